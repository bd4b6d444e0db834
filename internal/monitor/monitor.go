package monitor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/yad2bot/leadscan/internal/cancel"
	"github.com/yad2bot/leadscan/internal/config"
	"github.com/yad2bot/leadscan/internal/export"
	"github.com/yad2bot/leadscan/internal/model"
	"github.com/yad2bot/leadscan/internal/progress"
)

// phase is the monitor's position in the run.
type phase int

const (
	// phaseCrawl covers waiting for the crawl snapshot file and watching
	// the crawl; the two are not distinguished because a missing file
	// reads as ErrNotReady either way.
	phaseCrawl phase = iota

	// phaseExtract watches the extraction worker's snapshot.
	phaseExtract
)

// Monitor polls one run's snapshot files until a terminal state.
type Monitor struct {
	files    progress.Files
	token    cancel.Token
	logger   *slog.Logger
	poll     time.Duration
	stall    time.Duration
	ceiling  time.Duration
	grace    time.Duration
	onUpdate func(model.ProgressSnapshot)
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithCancelToken sets the cancellation token the monitor observes.
func WithCancelToken(t cancel.Token) Option {
	return func(m *Monitor) { m.token = t }
}

// WithLogger sets the monitor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) { m.logger = logger }
}

// WithIntervals overrides the polling cadence and the stall, ceiling,
// and grace durations. Tests use millisecond values.
func WithIntervals(poll, stall, ceiling, grace time.Duration) Option {
	return func(m *Monitor) {
		m.poll = poll
		m.stall = stall
		m.ceiling = ceiling
		m.grace = grace
	}
}

// WithOnUpdate registers a callback invoked for every fresh snapshot,
// in poll order. The run command streams these to the operator.
func WithOnUpdate(fn func(model.ProgressSnapshot)) Option {
	return func(m *Monitor) { m.onUpdate = fn }
}

// New creates a Monitor for the run whose artifacts live at files.
func New(files progress.Files, opts ...Option) *Monitor {
	m := &Monitor{
		files:   files,
		token:   cancel.NewMemoryToken(),
		poll:    config.DefaultPollInterval,
		stall:   config.DefaultStallTimeout,
		ceiling: config.DefaultRunCeiling,
		grace:   config.DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Run polls until the run reaches a terminal state and returns the
// reconciled report. It always returns exactly one report; every exit
// path is a terminal state.
func (m *Monitor) Run(ctx context.Context, params model.RunParams) *model.RunReport {
	report := &model.RunReport{
		RunName:   m.files.RunName,
		Params:    params,
		StartedAt: time.Now(),
	}

	crawlReader := progress.NewReader(m.files.CrawlSnapshot())
	extractReader := progress.NewReader(m.files.ExtractSnapshot())

	var lastGood model.ProgressSnapshot
	cur := phaseCrawl
	lastAdvance := time.Now()
	deadline := time.Now().Add(m.ceiling)

	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return m.finish(report, model.StatusCancelled, cur, &lastGood, crawlReader, extractReader)
		case <-ticker.C:
		}

		if m.token.Cancelled() {
			m.logger.Warn("run cancelled", "run", m.files.RunName)
			return m.finish(report, model.StatusCancelled, cur, &lastGood, crawlReader, extractReader)
		}
		if time.Now().After(deadline) {
			m.logger.Warn("run exceeded ceiling", "run", m.files.RunName, "ceiling", m.ceiling)
			return m.finish(report, model.StatusTimeout, cur, &lastGood, crawlReader, extractReader)
		}
		if time.Since(lastAdvance) > m.stall {
			m.logger.Warn("run stalled", "run", m.files.RunName, "stall", m.stall)
			return m.finish(report, model.StatusTimeout, cur, &lastGood, crawlReader, extractReader)
		}

		reader := crawlReader
		if cur == phaseExtract {
			reader = extractReader
		}

		snap, err := reader.Read()
		if err != nil {
			if !errors.Is(err, progress.ErrNotReady) && !errors.Is(err, progress.ErrStale) {
				m.logger.Warn("failed to read snapshot", "error", err)
			}
			continue
		}

		if m.reconcile(snap, &lastGood) {
			lastAdvance = time.Now()
		}
		if m.onUpdate != nil {
			m.onUpdate(snap)
		}

		if snap.Stage == model.StageError {
			m.logger.Warn("pipeline process reported error", "run", m.files.RunName)
			rep := m.finish(report, model.StatusFailed, cur, &lastGood, crawlReader, extractReader)
			rep.Err = errors.New(snap.Label)
			return rep
		}

		if cur == phaseCrawl && snap.Stage == model.StageCompleted {
			rows, err := export.CountRows(m.files.Intermediate())
			if err != nil {
				// Snapshot landed before the file; keep polling, bounded
				// by the stall timer.
				m.logger.Debug("crawl completed, waiting for export file", "error", err)
				continue
			}
			if rows == 0 {
				m.logger.Info("crawl kept no listings, skipping extraction", "run", m.files.RunName)
				return m.finish(report, model.StatusCompleted, cur, &lastGood, crawlReader, extractReader)
			}
			m.logger.Info("crawl completed, watching extraction", "run", m.files.RunName, "listings", rows)
			cur = phaseExtract
			lastAdvance = time.Now()
			// The extraction worker counts kept listings from zero, a
			// smaller range than the crawl's checked count. The
			// advancement baseline starts over with it; the folded
			// crawl counters stay for the final report.
			lastGood.Current = 0
			continue
		}

		if cur == phaseExtract && snap.Stage == model.StageCompleted {
			return m.finish(report, model.StatusCompleted, cur, &lastGood, crawlReader, extractReader)
		}
	}
}

// reconcile folds a fresh snapshot into the last-good view and reports
// whether real forward progress happened. A Current that drops back to
// zero while the run is live is a writer restart artifact: the stall
// timer keeps running and the counters keep their last values.
func (m *Monitor) reconcile(snap model.ProgressSnapshot, lastGood *model.ProgressSnapshot) bool {
	if snap.Current == 0 && lastGood.Current > 0 && !snap.Stage.Terminal() {
		m.logger.Debug("ignoring zeroed counters", "stage", snap.Stage)
		return false
	}

	advanced := snap.Current > lastGood.Current || snap.Stage != lastGood.Stage

	lastGood.Stage = snap.Stage
	lastGood.Seq = snap.Seq
	lastGood.Label = snap.Label
	lastGood.UpdatedAt = snap.UpdatedAt
	if snap.Current > lastGood.Current {
		lastGood.Current = snap.Current
	}
	if snap.Total > 0 {
		lastGood.Total = snap.Total
	}
	if snap.Page > lastGood.Page {
		lastGood.Page = snap.Page
	}
	if snap.TotalPages > 0 {
		lastGood.TotalPages = snap.TotalPages
	}
	if snap.Found > lastGood.Found {
		lastGood.Found = snap.Found
	}
	if snap.Duplicates > lastGood.Duplicates {
		lastGood.Duplicates = snap.Duplicates
	}
	if snap.PhonesFound > lastGood.PhonesFound {
		lastGood.PhonesFound = snap.PhonesFound
	}
	return advanced
}

// finish performs the terminal transition: wait out the grace period for
// a final snapshot write, fold it in, correct implausible counters from
// the files on disk, and fill the report.
func (m *Monitor) finish(report *model.RunReport, status model.RunStatus, cur phase,
	lastGood *model.ProgressSnapshot, crawlReader, extractReader *progress.Reader) *model.RunReport {

	if m.grace > 0 {
		time.Sleep(m.grace)
	}

	reader := crawlReader
	if cur == phaseExtract {
		reader = extractReader
	}
	if snap, err := reader.Read(); err == nil {
		m.reconcile(snap, lastGood)
	}

	report.Status = status
	report.Kept = lastGood.Found
	report.PhonesFound = lastGood.PhonesFound
	report.Duplicates = lastGood.Duplicates
	report.Page = lastGood.Page
	report.TotalPages = lastGood.TotalPages
	report.FinishedAt = time.Now()

	// The snapshot may be arbitrarily stale after a stall; the export
	// file is the ground truth for how much was actually kept.
	if status == model.StatusTimeout {
		if rows, err := export.CountRows(m.files.Intermediate()); err == nil && rows > report.Kept {
			m.logger.Info("corrected kept count from export file", "rows", rows, "snapshot", report.Kept)
			report.Kept = rows
		}
	}

	if fileExists(m.files.Final()) {
		report.OutputPath = m.files.Final()
	} else if fileExists(m.files.Intermediate()) {
		report.OutputPath = m.files.Intermediate()
	}

	m.logger.Info("run finished",
		"run", m.files.RunName,
		"status", status,
		"kept", report.Kept,
		"phones_found", report.PhonesFound,
		"elapsed", report.Elapsed().Round(time.Second),
	)
	return report
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
