package extract

import (
	"strings"

	"github.com/yad2bot/leadscan/internal/model"
)

// MapListing converts a raw feed object into a ListingRecord. Listings
// without a token are unusable (no detail URL can be derived) and map to
// nil. Missing fields stay empty; only the token is required.
func MapListing(raw map[string]any) *model.ListingRecord {
	token := digString(raw, "token")
	if token == "" {
		return nil
	}

	rec := model.NewListingRecord(token)
	rec.Price = digString(raw, "price")
	rec.Address = joinAddress(digMap(raw, "address"))
	rec.Rooms = digString(raw, "additionalDetails", "roomsCount")
	rec.Size = digString(raw, "additionalDetails", "squareMeter")
	rec.Title = listingTitle(raw, rec)
	return rec
}

// joinAddress flattens the nested address object into a single
// comma-separated line, most general part first.
func joinAddress(addr map[string]any) string {
	if addr == nil {
		return ""
	}
	var parts []string
	for _, part := range []string{
		digString(addr, "city", "text"),
		digString(addr, "neighborhood", "text"),
		digString(addr, "street", "text"),
		digString(addr, "house", "number"),
	} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// listingTitle prefers the source headline and otherwise synthesizes one
// from the room count and neighborhood, in the site's own language.
func listingTitle(raw map[string]any, rec *model.ListingRecord) string {
	if title := digString(raw, "metaData", "title"); title != "" {
		return title
	}

	var parts []string
	if rec.Rooms != "" {
		parts = append(parts, rec.Rooms+" חדרים")
	}
	if hood := digString(raw, "address", "neighborhood", "text"); hood != "" {
		parts = append(parts, hood)
	}
	if len(parts) == 0 {
		return "דירה להשכרה"
	}
	return strings.Join(parts, ", ")
}
