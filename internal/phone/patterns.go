package phone

import (
	"regexp"
	"strings"
)

// patterns match the forms a mobile number appears in on listing pages,
// tried in confidence order. International forms come first so that the
// local pattern does not truncate them.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\+972-?5\d-?\d{7}`),
	regexp.MustCompile(`972-?5\d-?\d{7}`),
	regexp.MustCompile(`05\d-?\d{7}`),
	regexp.MustCompile(`05\d[\s-]\d{3}[\s-]?\d{4}`),
}

var nonDigit = regexp.MustCompile(`\D`)

// Normalize reduces a matched number to the canonical local form:
// digits only, international prefix folded to the leading zero.
func Normalize(raw string) string {
	digits := nonDigit.ReplaceAllString(raw, "")
	if strings.HasPrefix(digits, "972") {
		digits = "0" + digits[3:]
	}
	return digits
}

// Valid reports whether a normalized number is a plausible Israeli
// mobile number: exactly ten digits with the 05 prefix.
func Valid(number string) bool {
	return len(number) == 10 && strings.HasPrefix(number, "05")
}

// FirstMatch scans text for the first valid mobile number and returns
// it normalized, or "" when none matches.
func FirstMatch(text string) string {
	for _, re := range patterns {
		for _, raw := range re.FindAllString(text, -1) {
			if number := Normalize(raw); Valid(number) {
				return number
			}
		}
	}
	return ""
}
