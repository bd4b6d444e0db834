package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Client issues requests to the rendering service. It is safe for use by
// a single process; the crawl and extraction processes each build their
// own.
type Client struct {
	// apiURL is the rendering-service endpoint.
	apiURL string

	// apiKey authenticates every request.
	apiKey string

	// httpClient carries the per-request timeout.
	httpClient *http.Client

	// limiter spaces requests out. The rendering service meters usage;
	// exceeding it turns into 429 responses that read as fetch failures.
	limiter *rate.Limiter

	// maxBodySize caps how much of a response is read.
	maxBodySize int64

	// userAgent is forwarded to the rendered browser session.
	userAgent string

	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithDelay sets the minimum spacing between requests. Zero disables the
// limiter.
func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithMaxBodySize caps the response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithUserAgent sets the browser User-Agent for rendered sessions.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a rendering-service client.
func NewClient(apiURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		apiURL:      apiURL,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(time.Second), 1),
		maxBodySize: 5 * 1024 * 1024,
		userAgent:   "",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Action is one step of a scripted browser interaction executed by the
// rendering service before the final HTML is captured. Exactly one field
// is set per action.
type Action struct {
	// WaitMillis pauses the session.
	WaitMillis int `json:"wait,omitempty"`

	// Click clicks the first element matching the CSS selector.
	Click string `json:"click,omitempty"`
}

// Fetch renders target and returns the final HTML. A non-2xx status or a
// transport error is returned as an error; callers treat any fetch error
// as a recoverable per-unit failure.
func (c *Client) Fetch(ctx context.Context, target string) (string, error) {
	return c.fetch(ctx, target, nil, 0)
}

// FetchWithActions renders target after executing the given interaction
// script, waiting settle after the last action. The phone-reveal flow
// needs this: the number only enters the DOM after the show-phone button
// is clicked.
func (c *Client) FetchWithActions(ctx context.Context, target string, actions []Action, settle time.Duration) (string, error) {
	return c.fetch(ctx, target, actions, settle)
}

func (c *Client) fetch(ctx context.Context, target string, actions []Action, settle time.Duration) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	params := url.Values{}
	params.Set("url", target)
	params.Set("apikey", c.apiKey)
	params.Set("js_render", "true")
	params.Set("premium_proxy", "true")
	params.Set("proxy_country", "il")
	if len(actions) > 0 {
		script, err := json.Marshal(actions)
		if err != nil {
			return "", fmt.Errorf("failed to encode render actions: %w", err)
		}
		params.Set("js_instructions", string(script))
	}
	if settle > 0 {
		params.Set("wait", fmt.Sprintf("%d", settle.Milliseconds()))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build render request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read rendered page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d for %s", ErrRenderFailed, resp.StatusCode, target)
	}

	c.logger.Debug("page rendered",
		"target", target,
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return string(body), nil
}
