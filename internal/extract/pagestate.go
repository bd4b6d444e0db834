package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageStateID is the id of the script element Next.js embeds its
// serialized state under.
const pageStateID = "__NEXT_DATA__"

// PageState extracts the embedded Next.js state from rendered HTML and
// decodes it into a generic JSON tree.
func PageState(html string) (map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	raw := doc.Find("script#" + pageStateID).First().Text()
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoPageState
	}

	var state map[string]any
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode page state: %w", err)
	}
	return state, nil
}

// digMap walks nested objects by key, returning nil when any hop is
// missing or not an object.
func digMap(node map[string]any, keys ...string) map[string]any {
	cur := node
	for _, key := range keys {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// digList returns the list at the end of the key path, or nil.
func digList(node map[string]any, keys ...string) []any {
	if len(keys) == 0 {
		return nil
	}
	parent := node
	if len(keys) > 1 {
		parent = digMap(node, keys[:len(keys)-1]...)
		if parent == nil {
			return nil
		}
	}
	list, _ := parent[keys[len(keys)-1]].([]any)
	return list
}

// digString returns the string at the end of the key path, or "".
// Numeric values are rendered without a trailing ".0" because the site
// stores counts like rooms as JSON numbers.
func digString(node map[string]any, keys ...string) string {
	if len(keys) == 0 {
		return ""
	}
	parent := node
	if len(keys) > 1 {
		parent = digMap(node, keys[:len(keys)-1]...)
		if parent == nil {
			return ""
		}
	}
	return stringify(parent[keys[len(keys)-1]])
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return ""
	}
}
