package extract

import (
	"errors"
	"testing"
)

func listingObj(token string) map[string]any {
	return map[string]any{
		"token": token,
		"title": "t",
		"price": "3000",
		"rooms": 3.0,
	}
}

func pagePropsState(pageProps map[string]any) map[string]any {
	return map[string]any{
		"props": map[string]any{"pageProps": pageProps},
	}
}

// TestListings tests feed location in a page state.
func TestListings(t *testing.T) {
	t.Parallel()

	t.Run("finds the primary feed path", func(t *testing.T) {
		t.Parallel()

		state := pagePropsState(map[string]any{
			"feed": map[string]any{
				"feedItems": []any{listingObj("a"), listingObj("b")},
			},
		})

		got, err := Listings(state)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 listings, got %d", len(got))
		}
	})

	t.Run("finds feeds moved under other known paths", func(t *testing.T) {
		t.Parallel()

		state := pagePropsState(map[string]any{
			"searchResults": map[string]any{
				"items": []any{listingObj("a")},
			},
		})

		got, err := Listings(state)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 listing, got %d", len(got))
		}
	})

	t.Run("unwraps feedData envelopes", func(t *testing.T) {
		t.Parallel()

		state := pagePropsState(map[string]any{
			"feed": map[string]any{
				"feedItems": []any{
					map[string]any{"feedData": listingObj("inner")},
				},
			},
		})

		got, err := Listings(state)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if digString(got[0], "token") != "inner" {
			t.Error("expected the inner feedData object")
		}
	})

	t.Run("falls back to a recursive search", func(t *testing.T) {
		t.Parallel()

		state := pagePropsState(map[string]any{
			"dehydratedState": map[string]any{
				"queries": map[string]any{
					"results": []any{listingObj("deep")},
				},
			},
		})

		got, err := Listings(state)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if digString(got[0], "token") != "deep" {
			t.Error("expected the deep-searched listing")
		}
	})

	t.Run("deep search rejects lists that do not look like feeds", func(t *testing.T) {
		t.Parallel()

		state := pagePropsState(map[string]any{
			"nav": map[string]any{
				"items": []any{map[string]any{"label": "home"}},
			},
		})

		if _, err := Listings(state); !errors.Is(err, ErrNoListings) {
			t.Errorf("expected ErrNoListings, got %v", err)
		}
	})

	t.Run("state without page props returns ErrNoListings", func(t *testing.T) {
		t.Parallel()

		if _, err := Listings(map[string]any{"props": "nope"}); !errors.Is(err, ErrNoListings) {
			t.Errorf("expected ErrNoListings, got %v", err)
		}
	})
}
