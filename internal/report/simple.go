package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yad2bot/leadscan/internal/model"
)

// SimpleWriter outputs a human-readable text report for the terminal.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var b strings.Builder

	b.WriteString("Run:        " + report.RunName + "\n")
	b.WriteString("Status:     " + statusText(report.Status) + "\n")
	fmt.Fprintf(&b, "Listings:   %d kept, %d duplicates skipped\n", report.Kept, report.Duplicates)
	fmt.Fprintf(&b, "Phones:     %d found\n", report.PhonesFound)
	if report.TotalPages > 0 {
		fmt.Fprintf(&b, "Pages:      %d/%d\n", report.Page, report.TotalPages)
	}
	if report.OutputPath != "" {
		b.WriteString("Output:     " + report.OutputPath + "\n")
	}
	if report.Err != nil {
		b.WriteString("Error:      " + report.Err.Error() + "\n")
	}
	if elapsed := report.Elapsed(); elapsed > 0 {
		b.WriteString("Elapsed:    " + elapsed.Round(time.Second).String() + "\n")
	}

	return io.WriteString(w.output, b.String())
}

func statusText(status model.RunStatus) string {
	switch status {
	case model.StatusCompleted:
		return "completed"
	case model.StatusCancelled:
		return "cancelled by operator"
	case model.StatusTimeout:
		return "timed out (no progress)"
	case model.StatusFailed:
		return "failed to start"
	default:
		return string(status)
	}
}
