package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Package-level sentinels allow callers to use errors.Is while still
// carrying a human-readable message.
var (
	// ErrNoAPIKey is returned when no render-service API key is set.
	// Every fetching command needs one; there is no anonymous mode.
	ErrNoAPIKey = errors.New("no render API key: set it in the config file or LEADSCAN_API_KEY")

	// ErrNoDataDir is returned when the data directory is empty.
	ErrNoDataDir = errors.New("no data directory configured")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidPageBudget is returned when the page budget is below one.
	// A crawl always fetches at least page one.
	ErrInvalidPageBudget = errors.New("invalid page budget: must be at least 1")

	// ErrInvalidItemDelay is returned when the inter-item delay is
	// negative. Use 0 for no delay.
	ErrInvalidItemDelay = errors.New("invalid item delay: must be non-negative")

	// ErrInvalidPollInterval is returned when the monitor poll interval
	// is not positive.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrInvalidStallTimeout is returned when the stall timeout is not
	// positive.
	ErrInvalidStallTimeout = errors.New("invalid stall timeout: must be positive")

	// ErrInvalidRunCeiling is returned when the absolute run ceiling is
	// shorter than the stall timeout, which would make the stall policy
	// unreachable.
	ErrInvalidRunCeiling = errors.New("invalid run ceiling: must be at least the stall timeout")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownMode is returned for a mode other than rent or sale.
	ErrUnknownMode = errors.New("unknown mode: must be rent or sale")

	// ErrUnknownRecency is returned for a recency filter other than
	// recent or all.
	ErrUnknownRecency = errors.New("unknown recency filter: must be recent or all")
)
