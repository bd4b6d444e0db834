package model

import "fmt"

// PlaceholderPhone is the phone number written by the crawl stage before
// enrichment. The extraction worker treats any listing still carrying this
// value as pending, and the final report never counts it as a real phone.
const PlaceholderPhone = "0501234567"

// ListingURLPrefix is the base of every listing detail page. A listing's
// detail URL is this prefix plus its token.
const ListingURLPrefix = "https://www.yad2.co.il/item/"

// ListingRecord is one classified property ad kept by the crawl.
// It is created by the crawl loop with a placeholder phone number,
// mutated in place by the extraction worker, and immutable once written
// to the final export file.
type ListingRecord struct {
	// Token is the stable source identifier, unique per listing.
	Token string

	// Title is the listing headline, or a synthesized fallback when the
	// source provides none.
	Title string

	// Price is the asking price as the source reports it (free text;
	// currency and thousands separators vary).
	Price string

	// Address is the joined city/neighborhood/street/house-number parts.
	Address string

	// Rooms is the room count as text ("3.5" is common).
	Rooms string

	// Size is the floor area in square meters.
	Size string

	// Floor is the floor number; filled by the extraction worker.
	// Zero is a valid floor, so this stays a string.
	Floor string

	// OwnerName is the contact name of the private owner.
	OwnerName string

	// PublishDate is the true publish date in DD/MM/YY form, read from
	// the detail page. List views only show unreliable relative dates.
	PublishDate string

	// Phone is PlaceholderPhone until the extraction worker fills it,
	// and stays the placeholder when no phone could be obtained.
	Phone string

	// URL is the listing's detail-page address.
	URL string
}

// NewListingRecord creates a record for the given source token with the
// placeholder phone and the derived detail-page URL.
func NewListingRecord(token string) *ListingRecord {
	return &ListingRecord{
		Token: token,
		Phone: PlaceholderPhone,
		URL:   ListingURLPrefix + token,
	}
}

// HasRealPhone reports whether the record carries an enriched phone
// number rather than the crawl-stage placeholder.
func (l *ListingRecord) HasRealPhone() bool {
	return l.Phone != "" && l.Phone != PlaceholderPhone && len(l.Phone) >= 9
}

// DisplayTitle returns a short label for progress messages. It truncates
// long titles and falls back to the address or token when no title exists.
func (l *ListingRecord) DisplayTitle() string {
	title := l.Title
	if title == "" {
		title = l.Address
	}
	if title == "" {
		title = l.Token
	}
	runes := []rune(title)
	if len(runes) > 30 {
		return string(runes[:30])
	}
	return title
}

// String implements fmt.Stringer for logging. The phone number is not
// included; log sanitization handles records that leak through anyway.
func (l *ListingRecord) String() string {
	return fmt.Sprintf("listing %s (%s)", l.Token, l.DisplayTitle())
}
