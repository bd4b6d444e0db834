package extract

// ListingLabel builds the short progress label for a raw feed listing,
// trying the headline fields first and falling back to the street
// address and finally the merchant name. Truncated for display.
func ListingLabel(raw map[string]any) string {
	label := "ללא כותרת"
	switch {
	case digString(raw, "title") != "":
		label = digString(raw, "title")
	case digString(raw, "headline") != "":
		label = digString(raw, "headline")
	case digString(raw, "description") != "":
		label = digString(raw, "description")
	case digString(raw, "address", "street", "text") != "":
		label = digString(raw, "address", "street", "text")
		if city := digString(raw, "address", "city", "text"); city != "" {
			label += ", " + city
		}
	case digString(raw, "merchant", "name") != "":
		label = "מודעה של " + digString(raw, "merchant", "name")
	}

	runes := []rune(label)
	if len(runes) > 30 {
		return string(runes[:30])
	}
	return label
}
