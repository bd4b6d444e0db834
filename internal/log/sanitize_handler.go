package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always masked.
// The render-service key authenticates every fetch, and exported leads
// are personal data; neither belongs in a log file.
var sensitiveKeys = map[string]bool{
	"apikey":        true,
	"api_key":       true,
	"api-key":       true,
	"x-api-key":     true,
	"authorization": true,
	"token":         true,
	"secret":        true,
	"password":      true,
	"phone":         true,
	"phone_number":  true,
	"owner_phone":   true,
}

// sensitivePatterns match values that are masked regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// apikey query parameter embedded in a logged URL
	regexp.MustCompile(`(?i)apikey=[a-z0-9]+`),

	// Israeli mobile numbers in local and international forms
	regexp.MustCompile(`^\+?972-?5\d-?\d{7}$`),
	regexp.MustCompile(`^05\d-?\d{7}$`),

	// long bare hex/alphanumeric strings, the render service's key format
	regexp.MustCompile(`^[a-f0-9]{32,}$`),
}

// MaskValue replaces sensitive values in log output.
const MaskValue = "***REDACTED***"

// SanitizeHandler wraps an slog.Handler and masks sensitive attribute
// values before delegating. It works with any underlying handler, so the
// same sanitization applies to text and JSON output.
type SanitizeHandler struct {
	handler slog.Handler
}

// NewSanitizeHandler wraps handler; a nil handler falls back to
// slog.Default().Handler().
func NewSanitizeHandler(handler slog.Handler) *SanitizeHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SanitizeHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *SanitizeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *SanitizeHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a handler with the given attributes, masked, added.
func (h *SanitizeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SanitizeHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a handler with the given group name.
func (h *SanitizeHandler) WithGroup(name string) slog.Handler {
	return &SanitizeHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr masks one attribute, recursing into groups.
func (h *SanitizeHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		val := a.Value.String()
		if masked, hit := maskValue(val); hit {
			return slog.String(a.Key, masked)
		}
	}
	return a
}

// maskValue masks a string value if it matches a sensitive pattern.
// URL-embedded apikey parameters are masked in place so the rest of the
// URL stays readable; whole-value matches are replaced entirely.
func maskValue(val string) (string, bool) {
	if loc := sensitivePatterns[0].FindStringIndex(val); loc != nil {
		return sensitivePatterns[0].ReplaceAllString(val, "apikey="+MaskValue), true
	}
	for _, pattern := range sensitivePatterns[1:] {
		if pattern.MatchString(val) {
			return MaskValue, true
		}
	}
	return val, false
}

// NewLogger creates a slog.Logger writing text output to w through the
// sanitizing handler. verbose switches the level from Warn to Debug.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewSanitizeHandler(textHandler))
}
