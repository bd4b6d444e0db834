// Package log provides slog helpers for leadscan, including a sanitizing
// handler that masks the render-service API key and subscriber phone
// numbers before log records reach their destination.
package log
