package extract

import "errors"

var (
	// ErrNoPageState is returned when a page carries no embedded state
	// script. Usually means the rendering service returned a block page
	// or an error page instead of the app.
	ErrNoPageState = errors.New("no embedded page state found in html")

	// ErrNoListings is returned when the page state parses but no
	// listing feed can be located in it, even by deep search.
	ErrNoListings = errors.New("no listing feed found in page state")
)
