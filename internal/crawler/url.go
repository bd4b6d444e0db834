package crawler

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/yad2bot/leadscan/internal/config"
)

// searchURL builds the list-page URL for one page of the crawl. Recent
// runs sort by date so the fresh listings come first and the page
// budget is spent where it matters.
func searchURL(mode, recency, cityCode string, page int) (string, error) {
	base, ok := config.BaseURLs[mode]
	if !ok {
		return "", fmt.Errorf("%w: %q", config.ErrUnknownMode, mode)
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse base url for mode %q: %w", mode, err)
	}

	q := u.Query()
	if cityCode != "" {
		q.Set("city", cityCode)
	}
	if recency == "recent" {
		q.Set("orderBy", "date")
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
