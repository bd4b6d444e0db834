package report

import (
	"io"

	"github.com/yad2bot/leadscan/internal/model"
)

// Writer renders a terminal run report to some destination.
type Writer interface {
	// Write outputs the report. Returns the number of bytes written.
	Write(report *model.RunReport) (int, error)
}

// baseWriter provides the shared output destination.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
