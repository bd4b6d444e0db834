package phone

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one way of locating a phone number in a parsed page.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Find returns a normalized valid number, or "".
	Find(doc *goquery.Document) string
}

// markupStrategy checks the places the site renders contact numbers:
// tel: anchors and the contact-info nodes the phone-reveal flow fills.
type markupStrategy struct{}

// Name implements Strategy.
func (markupStrategy) Name() string { return "markup" }

// selectors are checked in order. The tel: anchor is the strongest
// signal; the rest are the class and testid hooks the frontend uses.
var selectors = []string{
	"a[href^='tel:']",
	"[data-testid='contact-info-phone']",
	".contact-info-phone",
	".phone-number",
	".viewPhone",
}

// Find implements Strategy.
func (markupStrategy) Find(doc *goquery.Document) string {
	var found string
	for _, selector := range selectors {
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			candidates := sel.Text()
			if href, ok := sel.Attr("href"); ok {
				candidates += " " + href
			}
			if number := FirstMatch(candidates); number != "" {
				found = number
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// fullTextStrategy scans the entire page text. Weakest signal, so it
// runs last; a number anywhere on the page could belong to a banner.
type fullTextStrategy struct{}

// Name implements Strategy.
func (fullTextStrategy) Name() string { return "fulltext" }

// Find implements Strategy.
func (fullTextStrategy) Find(doc *goquery.Document) string {
	return FirstMatch(doc.Text())
}

// strategies in confidence order.
var strategies = []Strategy{markupStrategy{}, fullTextStrategy{}}

// Find parses rendered HTML and runs the strategies in order, returning
// the first valid number and the strategy that produced it.
func Find(pageHTML string) (number, strategy string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", ""
	}
	for _, s := range strategies {
		if n := s.Find(doc); n != "" {
			return n, s.Name()
		}
	}
	return "", ""
}
