package extract

import (
	"regexp"
	"time"
)

// DetailFields are the best-effort extras read from a listing's detail
// page. Any of them may be empty.
type DetailFields struct {
	Rooms       string
	Floor       string
	OwnerName   string
	PublishDate string
}

// ownerNameRE pulls the contact name out of the page's search text,
// which embeds it after the literal "seller name" label.
var ownerNameRE = regexp.MustCompile(`שם מוכר\s+(\S+)`)

// DetailPageFields parses a detail page's state for the enrichment
// fields. Current pages carry the item in the React Query cache at
// props.pageProps.dehydratedState.queries[].state.data; the direct
// props.pageProps.item shape is the older fallback.
func DetailPageFields(state map[string]any) DetailFields {
	var d DetailFields
	item := detailItem(state)
	if item == nil {
		return d
	}

	d.Rooms = digString(item, "additionalDetails", "roomsCount")
	if d.Rooms == "" {
		d.Rooms = digString(item, "additionalDetails", "property", "rooms")
	}
	d.Floor = digString(item, "address", "house", "floor")

	d.OwnerName = digString(item, "contactInfo", "name")
	if d.OwnerName == "" {
		if m := ownerNameRE.FindStringSubmatch(digString(item, "searchText")); m != nil {
			d.OwnerName = m[1]
		}
	}

	raw := digString(item, "dates", "createdAt")
	if raw == "" {
		raw = digString(item, "dates", "publishDate")
	}
	if raw != "" {
		d.PublishDate = formatPublishDate(raw)
	}
	return d
}

// detailItem locates the listing object in a detail page's state. The
// React Query cache entries are scanned for one that carries the
// listing's detail fields.
func detailItem(state map[string]any) map[string]any {
	pageProps := digMap(state, "props", "pageProps")
	if pageProps == nil {
		return nil
	}

	for _, q := range digList(pageProps, "dehydratedState", "queries") {
		query, ok := q.(map[string]any)
		if !ok {
			continue
		}
		data := digMap(query, "state", "data")
		if data == nil {
			continue
		}
		if _, ok := data["additionalDetails"]; ok {
			return data
		}
		if _, ok := data["contactInfo"]; ok {
			return data
		}
	}
	return digMap(pageProps, "item")
}

// formatPublishDate renders an ISO timestamp as DD/MM/YY. Values that
// are not ISO timestamps pass through unchanged.
func formatPublishDate(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02/01/06")
		}
	}
	return raw
}
