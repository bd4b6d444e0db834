package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yad2bot/leadscan/internal/cancel"
	"github.com/yad2bot/leadscan/internal/config"
	"github.com/yad2bot/leadscan/internal/extract"
	"github.com/yad2bot/leadscan/internal/model"
	"github.com/yad2bot/leadscan/internal/progress"
)

// Fetcher is the rendering-client surface the crawl needs.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (string, error)
}

// KnownChecker answers whether a listing was already captured. The lead
// store implements it; tests substitute fakes.
type KnownChecker interface {
	IsKnown(ctx context.Context, url string) (bool, error)
}

// Crawler walks list pages and filters listings. One Crawler serves one
// run and is not reused.
type Crawler struct {
	client          Fetcher
	known           KnownChecker
	progress        *progress.Writer
	token           cancel.Token
	logger          *slog.Logger
	now             func() time.Time
	listingsPerPage int
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithKnownChecker sets the dedup lookup. Without one every listing is
// treated as new.
func WithKnownChecker(k KnownChecker) Option {
	return func(c *Crawler) { c.known = k }
}

// WithProgressWriter sets the snapshot writer.
func WithProgressWriter(pw *progress.Writer) Option {
	return func(c *Crawler) { c.progress = pw }
}

// WithCancelToken sets the cancellation token checked at page and
// listing boundaries.
func WithCancelToken(t cancel.Token) Option {
	return func(c *Crawler) { c.token = t }
}

// WithLogger sets the crawler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) { c.logger = logger }
}

// WithClock overrides the time source used by the recency filter.
func WithClock(now func() time.Time) Option {
	return func(c *Crawler) { c.now = now }
}

// WithListingsPerPage overrides the full-page size that marks the last
// page. Tests use small values.
func WithListingsPerPage(n int) Option {
	return func(c *Crawler) { c.listingsPerPage = n }
}

// New creates a Crawler around a rendering client.
func New(client Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		client:          client,
		token:           cancel.NewMemoryToken(),
		now:             time.Now,
		listingsPerPage: config.ListingsPerPage,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Result summarizes one crawl.
type Result struct {
	// Kept are the listings that passed every filter, in discovery order.
	Kept []*model.ListingRecord

	// Duplicates counts listings skipped because the lead store already
	// knew them.
	Duplicates int

	// Pages is the last page the crawl fetched.
	Pages int

	// Cancelled reports whether the crawl stopped on the cancellation
	// token rather than running out of pages.
	Cancelled bool
}

// Run crawls list pages until the page budget is exhausted, a short page
// marks the end of the feed, or the run is cancelled. Page-level fetch
// and parse failures are logged and the crawl advances; only an invalid
// mode is an error.
func (c *Crawler) Run(ctx context.Context, params model.RunParams) (Result, error) {
	var res Result

	budget := params.PageBudget
	if budget < 1 {
		budget = config.DefaultPageBudget
	}

	c.snapshot(model.ProgressSnapshot{
		Stage:      model.StageStarting,
		Page:       1,
		TotalPages: budget,
	})

	for page := 1; page <= budget; page++ {
		if c.token.Cancelled() {
			c.logger.Warn("crawl cancelled", "page", page)
			res.Cancelled = true
			break
		}
		res.Pages = page

		target, err := searchURL(params.Mode, params.Recency, params.CityCode, page)
		if err != nil {
			return res, err
		}

		raw, err := c.fetchPage(ctx, target, page)
		if err != nil {
			c.logger.Warn("page yielded no listings", "page", page, "error", err)
			continue
		}
		c.logger.Info("page fetched", "page", page, "raw_listings", len(raw))

		c.snapshot(model.ProgressSnapshot{
			Stage:      model.StageChecking,
			Current:    len(res.Kept),
			Total:      len(raw) * budget,
			Page:       page,
			TotalPages: budget,
			Found:      len(res.Kept),
			Duplicates: res.Duplicates,
			Label:      fmt.Sprintf("page %d/%d", page, budget),
		})

		cancelled := c.processPage(ctx, params, raw, page, budget, &res)
		if cancelled {
			res.Cancelled = true
			break
		}

		// A short page means the feed ran out.
		if len(raw) < c.listingsPerPage {
			c.logger.Info("short page, assuming end of feed", "page", page, "raw_listings", len(raw))
			break
		}
	}

	c.logger.Info("crawl finished",
		"pages", res.Pages,
		"kept", len(res.Kept),
		"duplicates", res.Duplicates,
		"cancelled", res.Cancelled,
	)
	return res, nil
}

// fetchPage fetches and parses one list page down to its raw listings.
func (c *Crawler) fetchPage(ctx context.Context, target string, page int) ([]map[string]any, error) {
	pageHTML, err := c.client.Fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
	}
	state, err := extract.PageState(pageHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %d: %w", page, err)
	}
	return extract.Listings(state)
}

// processPage filters one page's raw listings into res.Kept. Returns
// true when the run was cancelled mid-page.
func (c *Crawler) processPage(ctx context.Context, params model.RunParams, raw []map[string]any, page, budget int, res *Result) bool {
	checkedBefore := (page - 1) * c.listingsPerPage

	for i, listing := range raw {
		if c.token.Cancelled() {
			c.logger.Warn("crawl cancelled mid-page", "page", page)
			return true
		}

		label := extract.ListingLabel(listing)
		c.snapshot(model.ProgressSnapshot{
			Stage:      model.StageChecking,
			Current:    checkedBefore + i + 1,
			Total:      len(raw) * budget,
			Page:       page,
			TotalPages: budget,
			Found:      len(res.Kept),
			Duplicates: res.Duplicates,
			Label:      label,
		})

		rec := c.filterListing(ctx, params, listing)
		if rec == nil {
			continue
		}
		if rec == duplicateMarker {
			res.Duplicates++
			continue
		}
		res.Kept = append(res.Kept, rec)
		c.logger.Debug("listing kept", "listing", rec.Token)
	}
	return false
}

// duplicateMarker distinguishes a dedup skip from a filter skip in
// filterListing's return value.
var duplicateMarker = &model.ListingRecord{}

// filterListing runs one raw listing through the filter chain: dedup,
// ownership, recency, field extraction. Nil means filtered out.
func (c *Crawler) filterListing(ctx context.Context, params model.RunParams, raw map[string]any) *model.ListingRecord {
	rec := extract.MapListing(raw)
	if rec == nil {
		c.logger.Debug("listing without token skipped")
		return nil
	}

	if c.known != nil {
		known, err := c.known.IsKnown(ctx, rec.URL)
		if err != nil {
			// A broken store must not stop the crawl; worst case the
			// extraction stage re-checks and skips.
			c.logger.Warn("lead store check failed, treating as new", "error", err)
		} else if known {
			c.logger.Debug("duplicate skipped", "listing", rec.Token)
			return duplicateMarker
		}
	}

	if !extract.IsPrivateOwner(raw) {
		c.logger.Debug("agency listing skipped", "listing", rec.Token)
		return nil
	}

	if params.Recency == "recent" && !c.isRecent(ctx, rec) {
		c.logger.Debug("stale listing skipped", "listing", rec.Token)
		return nil
	}

	return rec
}

// isRecent applies the publish-date filter. List views only carry
// relative dates, so the true date comes from the detail page; a fetch
// failure excludes the listing rather than letting stale ads through.
func (c *Crawler) isRecent(ctx context.Context, rec *model.ListingRecord) bool {
	pageHTML, err := c.client.Fetch(ctx, rec.URL)
	if err != nil {
		c.logger.Warn("failed to fetch detail page for date check", "listing", rec.Token, "error", err)
		return false
	}
	return extract.PublishedWithinDay(pageHTML, c.now())
}

func (c *Crawler) snapshot(snap model.ProgressSnapshot) {
	if c.progress == nil {
		return
	}
	if err := c.progress.Write(snap); err != nil {
		c.logger.Warn("failed to write progress snapshot", "error", err)
	}
}
