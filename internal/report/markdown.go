package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/yad2bot/leadscan/internal/model"
)

// MarkdownWriter outputs the run report as a markdown summary.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Run Report")
	md.PlainText("")

	rows := [][]string{
		{"Run", "`" + report.RunName + "`"},
		{"Status", statusText(report.Status)},
		{"Mode", report.Params.Mode},
		{"Recency", report.Params.Recency},
		{"Listings kept", strconv.Itoa(report.Kept)},
		{"Duplicates skipped", strconv.Itoa(report.Duplicates)},
		{"Phones found", strconv.Itoa(report.PhonesFound)},
	}
	if report.TotalPages > 0 {
		rows = append(rows, []string{"Pages", strconv.Itoa(report.Page) + "/" + strconv.Itoa(report.TotalPages)})
	}
	if report.OutputPath != "" {
		rows = append(rows, []string{"Output", "`" + report.OutputPath + "`"})
	}
	if elapsed := report.Elapsed(); elapsed > 0 {
		rows = append(rows, []string{"Elapsed", elapsed.Round(time.Second).String()})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})

	if report.Err != nil {
		md.PlainText("")
		md.Warningf("%s", report.Err.Error())
	}

	return len(md.String()), md.Build()
}
