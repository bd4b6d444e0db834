package extract

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// dateRE matches the date forms the site prints on detail pages,
// DD/MM/YY, DD/MM/YYYY and YYYY-MM-DD.
var dateRE = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{1,2}-\d{1,2}`)

var dateLayouts = []string{"2/1/06", "2/1/2006", "2006-1-2"}

// PublishedWithinDay scans a detail page's visible text for publish
// dates and reports whether the first parseable one falls on now's date
// or the day before. Pages with no recognizable date count as old; the
// recency filter only keeps listings it can positively date.
func PublishedWithinDay(pageHTML string, now time.Time) bool {
	today := day0(now)
	yesterday := today.AddDate(0, 0, -1)

	for _, raw := range dateRE.FindAllString(visibleText(pageHTML), -1) {
		for _, layout := range dateLayouts {
			parsed, err := time.Parse(layout, raw)
			if err != nil {
				continue
			}
			day := day0(parsed)
			return day.Equal(today) || day.Equal(yesterday)
		}
	}
	return false
}

func day0(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// visibleText flattens a document to its rendered text, skipping script
// and style subtrees. Parse errors yield whatever text was recovered;
// the tokenizer is lenient and real pages always produce something.
func visibleText(pageHTML string) string {
	root, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return b.String()
}
