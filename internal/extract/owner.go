package extract

import "strings"

// agencyKeywords mark a listing as posted by a broker or business. The
// terms are the Hebrew trade words and the big franchise names that show
// up in agency listing titles and contact names.
var agencyKeywords = []string{
	"תיווך", "מתווך", "משרד", "רימקס", "אנגלו סכסון", "קבלן", "חברה", "נדל\"ן",
}

// IsPrivateOwner reports whether a raw feed listing was posted by a
// private owner. The explicit ad-type field wins when present; otherwise
// the text fields are scanned for agency keywords, and a listing with no
// agency signal at all is assumed private.
func IsPrivateOwner(raw map[string]any) bool {
	switch digString(raw, "adType") {
	case "private":
		return true
	case "business":
		return false
	}
	if digString(raw, "merchantType") == "private" {
		return true
	}

	fields := []string{
		digString(raw, "title"),
		digString(raw, "subtitle"),
		digString(raw, "merchant_name"),
		digString(raw, "contact_name"),
		digString(raw, "description"),
		digString(raw, "contact", "name"),
		digString(raw, "merchant", "name"),
	}
	for _, field := range fields {
		if field == "" {
			continue
		}
		lower := strings.ToLower(field)
		for _, keyword := range agencyKeywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return false
			}
		}
	}
	return true
}
