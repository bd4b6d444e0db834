package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yad2bot/leadscan/internal/crawler"
	"github.com/yad2bot/leadscan/internal/export"
	"github.com/yad2bot/leadscan/internal/model"
	"github.com/yad2bot/leadscan/internal/phone"
	"github.com/yad2bot/leadscan/internal/progress"
	"github.com/yad2bot/leadscan/internal/store"
)

// CrawlStep runs the crawl loop and writes the intermediate export file.
// The completed snapshot is written after the file exists, so an
// observer that sees the completed stage can rely on the file.
type CrawlStep struct {
	// Crawler performs the page walk.
	Crawler *crawler.Crawler

	// Files locates the run's artifacts.
	Files progress.Files

	// Progress is the crawl-stage snapshot writer, shared with Crawler.
	Progress *progress.Writer

	// Logger for step-level events.
	Logger *slog.Logger
}

// Name implements Step.
func (s *CrawlStep) Name() string { return "crawl" }

// Do implements Step.
func (s *CrawlStep) Do(ctx context.Context, report *model.RunReport) error {
	res, err := s.Crawler.Run(ctx, report.Params)
	if err != nil {
		s.writeErrorSnapshot(err)
		return fmt.Errorf("crawl failed: %w", err)
	}

	if err := export.WriteListings(s.Files.Intermediate(), res.Kept, false); err != nil {
		s.writeErrorSnapshot(err)
		return err
	}

	report.Kept = len(res.Kept)
	report.Duplicates = res.Duplicates
	report.Page = res.Pages
	report.OutputPath = s.Files.Intermediate()
	if res.Cancelled {
		report.Status = model.StatusCancelled
	} else {
		report.Status = model.StatusCompleted
	}

	if s.Progress != nil {
		snap := model.ProgressSnapshot{
			Stage:      model.StageCompleted,
			Current:    report.Kept,
			Total:      report.Kept,
			Page:       res.Pages,
			Found:      report.Kept,
			Duplicates: res.Duplicates,
		}
		if err := s.Progress.Write(snap); err != nil {
			s.Logger.Warn("failed to write final crawl snapshot", "error", err)
		}
	}
	return nil
}

func (s *CrawlStep) writeErrorSnapshot(cause error) {
	if s.Progress == nil {
		return
	}
	snap := model.ProgressSnapshot{
		Stage: model.StageError,
		Label: cause.Error(),
	}
	if err := s.Progress.Write(snap); err != nil {
		s.Logger.Warn("failed to write error snapshot", "error", err)
	}
}

// ExtractStep runs the detail/phone extraction worker over the
// intermediate export file.
type ExtractStep struct {
	// Worker performs the per-listing enrichment.
	Worker *phone.Worker

	// Files locates the run's artifacts.
	Files progress.Files
}

// Name implements Step.
func (s *ExtractStep) Name() string { return "extract" }

// Do implements Step.
func (s *ExtractStep) Do(ctx context.Context, report *model.RunReport) error {
	res, err := s.Worker.Run(ctx, s.Files.Intermediate())
	report.PhonesFound = res.PhonesFound
	if res.OutputPath != "" {
		report.OutputPath = res.OutputPath
	}

	if errors.Is(err, phone.ErrCancelled) {
		report.Status = model.StatusCancelled
		return nil
	}
	if err != nil {
		return err
	}
	report.Status = model.StatusCompleted
	return nil
}

// RecordStep persists the run's captured leads so later runs skip them
// as duplicates. Only listings with a real phone are recorded; a
// listing the extraction could not enrich stays eligible for the next
// run.
type RecordStep struct {
	// Store is the lead database.
	Store *store.Store

	// Files locates the enriched export file.
	Files progress.Files

	// Logger for step-level events.
	Logger *slog.Logger
}

// Name implements Step.
func (s *RecordStep) Name() string { return "record" }

// Do implements Step.
func (s *RecordStep) Do(ctx context.Context, report *model.RunReport) error {
	records, err := export.ReadListings(s.Files.Final())
	if err != nil {
		// Nothing to record is not a failure; a cancelled run may have
		// no enriched file at all.
		s.Logger.Debug("no enriched file to record", "error", err)
		return nil
	}

	recorded := 0
	for _, rec := range records {
		if !rec.HasRealPhone() {
			continue
		}
		if err := s.Store.RecordLead(ctx, rec); err != nil {
			s.Logger.Warn("failed to record lead", "listing", rec.Token, "error", err)
			continue
		}
		recorded++
	}
	s.Logger.Info("leads recorded", "count", recorded)
	return nil
}
