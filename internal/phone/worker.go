package phone

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yad2bot/leadscan/internal/cancel"
	"github.com/yad2bot/leadscan/internal/export"
	"github.com/yad2bot/leadscan/internal/extract"
	"github.com/yad2bot/leadscan/internal/fetch"
	"github.com/yad2bot/leadscan/internal/model"
	"github.com/yad2bot/leadscan/internal/progress"
)

// Fetcher is the rendering-client surface the worker needs.
type Fetcher interface {
	FetchWithActions(ctx context.Context, target string, actions []fetch.Action, settle time.Duration) (string, error)
}

// KnownChecker answers whether a listing was already captured. The lead
// store implements it; tests substitute fakes.
type KnownChecker interface {
	IsKnown(ctx context.Context, url string) (bool, error)
}

// revealActions is the scripted interaction that makes the site render
// the contact number: wait for the app, click the show-phone button,
// then the contact node, giving the DOM time to settle in between.
var revealActions = []fetch.Action{
	{WaitMillis: 3000},
	{Click: ".viewPhone"},
	{WaitMillis: 2000},
	{Click: "[data-testid='contact-info-phone']"},
	{WaitMillis: 2000},
}

// revealSettle is the extra wait after the last reveal action.
const revealSettle = 5 * time.Second

// Worker is the detail/phone extraction stage. It reads the crawl-stage
// export file, visits each listing's detail page, and writes the
// enriched file next to the input.
type Worker struct {
	client   Fetcher
	known    KnownChecker
	progress *progress.Writer
	token    cancel.Token
	logger   *slog.Logger
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithKnownChecker sets the dedup lookup. Without one every listing is
// treated as new.
func WithKnownChecker(k KnownChecker) WorkerOption {
	return func(w *Worker) { w.known = k }
}

// WithProgressWriter sets the snapshot writer. Without one no snapshots
// are written, which only makes sense in tests.
func WithProgressWriter(pw *progress.Writer) WorkerOption {
	return func(w *Worker) { w.progress = pw }
}

// WithCancelToken sets the cancellation token checked between items.
func WithCancelToken(t cancel.Token) WorkerOption {
	return func(w *Worker) { w.token = t }
}

// WithLogger sets the worker's logger.
func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) { w.logger = logger }
}

// NewWorker creates an extraction worker around a rendering client.
func NewWorker(client Fetcher, opts ...WorkerOption) *Worker {
	w := &Worker{
		client: client,
		token:  cancel.NewMemoryToken(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Result summarizes one extraction stage.
type Result struct {
	// OutputPath is the enriched file. Written even on cancellation,
	// with whatever enrichment had happened by then.
	OutputPath string

	// Processed is how many listings were visited or skipped.
	Processed int

	// PhonesFound counts listings that ended up with a real number,
	// including already-known listings that carried one from the crawl.
	PhonesFound int
}

// Run processes the export file at inputPath and writes the enriched
// file. Per-listing failures are logged and skipped; only input and
// output file problems fail the stage.
func (w *Worker) Run(ctx context.Context, inputPath string) (Result, error) {
	var res Result
	res.OutputPath = enrichedPath(inputPath)

	records, err := export.ReadListings(inputPath)
	if err != nil {
		return res, fmt.Errorf("failed to read crawl output: %w", err)
	}
	total := len(records)

	w.snapshot(model.StageStarting, 0, total, 0, "")
	w.logger.Info("extraction started", "input", inputPath, "listings", total)

	cancelled := false
	for _, rec := range records {
		if w.token.Cancelled() {
			w.logger.Warn("extraction cancelled", "processed", res.Processed, "total", total)
			cancelled = true
			break
		}

		w.processRecord(ctx, rec, &res)
		res.Processed++
		w.snapshot(model.StageExtracting, res.Processed, total, res.PhonesFound, rec.DisplayTitle())
	}

	if err := export.WriteListings(res.OutputPath, records, true); err != nil {
		return res, fmt.Errorf("failed to write enriched output: %w", err)
	}

	if cancelled {
		return res, ErrCancelled
	}

	w.snapshot(model.StageCompleted, total, total, res.PhonesFound, "")
	w.logger.Info("extraction completed",
		"output", res.OutputPath,
		"phones_found", res.PhonesFound,
	)
	return res, nil
}

// processRecord enriches one listing in place.
func (w *Worker) processRecord(ctx context.Context, rec *model.ListingRecord, res *Result) {
	if rec.URL == "" {
		return
	}

	if w.known != nil {
		known, err := w.known.IsKnown(ctx, rec.URL)
		if err != nil {
			w.logger.Warn("lead store check failed, extracting anyway", "error", err)
		} else if known {
			// Already captured by an earlier run. Its number still counts
			// toward the total when the crawl row carried one.
			if rec.HasRealPhone() {
				res.PhonesFound++
			}
			w.logger.Debug("skipping known listing", "listing", rec.Token)
			return
		}
	}

	if rec.HasRealPhone() {
		res.PhonesFound++
		return
	}

	pageHTML, err := w.client.FetchWithActions(ctx, rec.URL, revealActions, revealSettle)
	if err != nil {
		w.logger.Warn("failed to fetch detail page", "listing", rec.Token, "error", err)
		return
	}

	if number, strategy := Find(pageHTML); number != "" {
		rec.Phone = number
		res.PhonesFound++
		w.logger.Debug("phone found", "listing", rec.Token, "strategy", strategy)
	} else {
		w.logger.Warn("no phone on detail page", "listing", rec.Token)
	}

	w.fillDetails(pageHTML, rec)
}

// fillDetails copies the best-effort detail-page fields into empty
// record fields. Parse failures leave the record as it was.
func (w *Worker) fillDetails(pageHTML string, rec *model.ListingRecord) {
	state, err := extract.PageState(pageHTML)
	if err != nil {
		w.logger.Debug("no page state on detail page", "listing", rec.Token)
		return
	}

	details := extract.DetailPageFields(state)
	if details.Rooms != "" && rec.Rooms == "" {
		rec.Rooms = details.Rooms
	}
	if details.Floor != "" && rec.Floor == "" {
		rec.Floor = details.Floor
	}
	if details.OwnerName != "" && rec.OwnerName == "" {
		rec.OwnerName = details.OwnerName
	}
	if details.PublishDate != "" && rec.PublishDate == "" {
		rec.PublishDate = details.PublishDate
	}
}

func (w *Worker) snapshot(stage model.Stage, current, total, phonesFound int, label string) {
	if w.progress == nil {
		return
	}
	snap := model.ProgressSnapshot{
		Stage:       stage,
		Current:     current,
		Total:       total,
		PhonesFound: phonesFound,
		Label:       label,
	}
	if err := w.progress.Write(snap); err != nil {
		w.logger.Warn("failed to write progress snapshot", "error", err)
	}
}

// enrichedPath derives the output path from the input path.
func enrichedPath(inputPath string) string {
	const ext = ".csv"
	base := inputPath
	if len(base) > len(ext) && base[len(base)-len(ext):] == ext {
		base = base[:len(base)-len(ext)]
	}
	return base + "_with_phones" + ext
}
