package extract

// feedPaths are the locations the site has kept its listing feed at
// across releases, tried in order under props.pageProps.
var feedPaths = [][]string{
	{"feed", "feedItems"},
	{"initialData", "feed", "feedItems"},
	{"serverPage", "feed", "feedItems"},
	{"feed", "feed_items"},
	{"initialData", "feed", "feed_items"},
	{"serverPage", "feed", "feed_items"},
	{"feedData", "items"},
	{"searchResults", "items"},
	{"listings"},
	{"items"},
}

// deepSearchKeys are object keys whose list values are candidate feeds
// during the fallback recursive search.
var deepSearchKeys = []string{
	"feed_items", "feedItems", "items", "listings", "results",
	"data", "content", "ads", "properties", "realestate",
}

// listingIndicators are fields common to listing objects. An object
// carrying at least three of them is treated as a listing.
var listingIndicators = []string{
	"id", "title", "price", "rooms", "address", "city",
	"contact", "phone", "merchant", "date", "url", "link",
	"propertyType", "adType", "coordinates", "images",
}

// Listings locates the listing feed in a search-results page state. The
// known feed paths are tried first; when none yields items the whole
// tree is searched recursively for a list that looks like a feed.
// Items wrapped in a feedData envelope are unwrapped.
func Listings(state map[string]any) ([]map[string]any, error) {
	pageProps := digMap(state, "props", "pageProps")
	if pageProps == nil {
		return nil, ErrNoListings
	}

	for _, path := range feedPaths {
		items := digList(pageProps, path...)
		if listings := collectListings(items); len(listings) > 0 {
			return listings, nil
		}
	}

	if found := deepSearch(pageProps); len(found) > 0 {
		return collectListings(found), nil
	}
	return nil, ErrNoListings
}

func collectListings(items []any) []map[string]any {
	var listings []map[string]any
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if inner, ok := obj["feedData"].(map[string]any); ok {
			listings = append(listings, inner)
			continue
		}
		listings = append(listings, obj)
	}
	return listings
}

// deepSearch walks the tree looking for the first list whose head item
// looks like a listing.
func deepSearch(node any) []any {
	switch t := node.(type) {
	case map[string]any:
		for _, key := range deepSearchKeys {
			list, ok := t[key].([]any)
			if !ok || len(list) == 0 {
				continue
			}
			if head, ok := list[0].(map[string]any); ok && looksLikeListing(head) {
				return list
			}
		}
		for _, value := range t {
			if found := deepSearch(value); found != nil {
				return found
			}
		}
	case []any:
		if len(t) == 0 {
			return nil
		}
		if head, ok := t[0].(map[string]any); ok && looksLikeListing(head) {
			return t
		}
		for _, item := range t {
			if found := deepSearch(item); found != nil {
				return found
			}
		}
	}
	return nil
}

func looksLikeListing(item map[string]any) bool {
	found := 0
	for _, key := range listingIndicators {
		if _, ok := item[key]; ok {
			found++
		}
	}
	return found >= 3
}
