package config

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// cityNames maps the source site's numeric region codes to export-safe
// city names. The names are used in run names and file names, so they
// contain no spaces or non-ASCII characters.
var cityNames = map[string]string{
	"5000": "TelAviv",
	"3000": "Jerusalem",
	"4000": "Haifa",
	"7000": "BeerSheva",
	"8300": "RishonLeZion",
	"7900": "PetahTikva",
	"7400": "Netanya",
	"0070": "Ashdod",
}

// CityName resolves a region code (or free-text city) to the name used in
// run and file names. Unknown numeric codes become "City<code>"; an empty
// code means the whole country.
func CityName(cityCode string) string {
	if cityCode == "" {
		return "all_cities"
	}
	if name, ok := cityNames[cityCode]; ok {
		return name
	}
	if isDigits(cityCode) {
		return "City" + cityCode
	}
	// Free-text city names are title-cased so file names stay uniform
	// regardless of how the operator typed them.
	return cases.Title(language.English).String(cityCode)
}

// RunName builds the identity shared by all on-disk artifacts of one run:
// <City>_<mode>_<filter>_<date>. The crawl process, extraction worker,
// and monitor all derive snapshot and flag paths from it.
func RunName(cityCode, mode, recency string, day time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s", CityName(cityCode), mode, recency, day.Format("2006-01-02"))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
