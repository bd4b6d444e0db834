package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Where a value mirrors the source site's
// behavior (page size, phone placeholder timing) it is documented as such;
// the rest are operational defaults tuned for the external render service.
const (
	// DefaultRenderAPIURL is the endpoint of the external page-fetch
	// service that renders JavaScript and returns final HTML.
	DefaultRenderAPIURL = "https://api.zenrows.com/v1/"

	// DefaultFetchTimeout bounds one render request. The service renders
	// pages in a real browser behind residential proxies, so responses
	// routinely take tens of seconds.
	DefaultFetchTimeout = 60 * time.Second

	// DefaultPageBudget is the maximum number of list pages to crawl
	// when the operator does not set one.
	DefaultPageBudget = 10

	// ListingsPerPage is how many listings the source shows on a full
	// list page. A page returning fewer is treated as the last page.
	ListingsPerPage = 20

	// DefaultItemDelay is the pause between listing-detail fetches.
	// The render service meters requests per minute; one second keeps a
	// full run inside its limits.
	DefaultItemDelay = 1 * time.Second

	// DefaultPollInterval is how often the progress monitor re-reads the
	// snapshot files.
	DefaultPollInterval = 1 * time.Second

	// DefaultStallTimeout is how long the monitor tolerates no forward
	// progress before declaring the run timed out.
	DefaultStallTimeout = 3 * time.Minute

	// DefaultRunCeiling is the absolute upper bound on one run. The
	// monitor never waits past it regardless of stall-timer resets.
	DefaultRunCeiling = 30 * time.Minute

	// DefaultGracePeriod is how long the monitor waits after a terminal
	// transition for the writing process to land its final snapshot.
	DefaultGracePeriod = 2 * time.Second

	// DefaultMaxBodySize caps one rendered page. List pages with the
	// embedded state JSON run 1-2MB; 5MB leaves headroom without letting
	// a bad response exhaust memory.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent is sent on render requests.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

	// AppName is used for XDG directory paths.
	AppName = "leadscan"
)

// Base list URLs per mode. The crawl appends city, ordering, and page
// parameters to these.
var BaseURLs = map[string]string{
	"rent": "https://www.yad2.co.il/realestate/rent?",
	"sale": "https://www.yad2.co.il/realestate/forsale?",
}

// Config holds all options for one leadscan invocation. It is populated
// from CLI flags and the optional config file, then passed through the
// application explicitly rather than read from globals.
type Config struct {
	// RenderAPIURL is the external render-service endpoint.
	RenderAPIURL string

	// RenderAPIKey authenticates against the render service. Required
	// for any command that fetches pages.
	RenderAPIKey string

	// DataDir is where progress snapshots, cancellation flags, and CSV
	// files live. Both OS processes and the supervisor must agree on it.
	// Defaults to the XDG data directory.
	DataDir string

	// FetchTimeout bounds one render request.
	FetchTimeout time.Duration

	// PageBudget is the maximum number of list pages for one crawl.
	PageBudget int

	// ItemDelay is the pause between listing-detail fetches.
	ItemDelay time.Duration

	// PollInterval is the monitor's snapshot polling interval. It is
	// explicit configuration, not an implicit constant, so tests can use
	// millisecond values.
	PollInterval time.Duration

	// StallTimeout is how long the monitor waits without counter
	// advancement before reporting timeout.
	StallTimeout time.Duration

	// RunCeiling is the absolute bound on one run's monitoring.
	RunCeiling time.Duration

	// GracePeriod is the post-terminal wait for a final snapshot write.
	GracePeriod time.Duration

	// MaxBodySize caps one rendered page in bytes.
	MaxBodySize int64

	// UserAgent is sent on render requests.
	UserAgent string

	// Verbose switches logging from Warn to Debug.
	Verbose bool
}

// NewConfig creates a Config with the package defaults. Many defaults are
// non-zero, so callers must start from this constructor rather than a
// zero value.
func NewConfig() *Config {
	return &Config{
		RenderAPIURL: DefaultRenderAPIURL,
		DataDir:      XDGDataDir(),
		FetchTimeout: DefaultFetchTimeout,
		PageBudget:   DefaultPageBudget,
		ItemDelay:    DefaultItemDelay,
		PollInterval: DefaultPollInterval,
		StallTimeout: DefaultStallTimeout,
		RunCeiling:   DefaultRunCeiling,
		GracePeriod:  DefaultGracePeriod,
		MaxBodySize:  DefaultMaxBodySize,
		UserAgent:    DefaultUserAgent,
	}
}

// XDGDataDir returns the data directory for leadscan following the XDG
// Base Directory Specification (~/.local/share/leadscan on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory for leadscan
// (~/.config/leadscan on Linux).
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag and file parsing, before any work begins,
// so later code can assume a sane Config.
func (c *Config) Validate() error {
	if c.RenderAPIKey == "" {
		return ErrNoAPIKey
	}
	if c.DataDir == "" {
		return ErrNoDataDir
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.PageBudget < 1 {
		return ErrInvalidPageBudget
	}
	if c.ItemDelay < 0 {
		return ErrInvalidItemDelay
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.StallTimeout <= 0 {
		return ErrInvalidStallTimeout
	}
	if c.RunCeiling < c.StallTimeout {
		return ErrInvalidRunCeiling
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
