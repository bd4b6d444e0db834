package phone

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/yad2bot/leadscan/internal/cancel"
	"github.com/yad2bot/leadscan/internal/export"
	"github.com/yad2bot/leadscan/internal/fetch"
	"github.com/yad2bot/leadscan/internal/model"
)

// fakeFetcher serves canned detail pages keyed by listing URL.
type fakeFetcher struct {
	pages map[string]string
	err   error
	calls int
}

func (f *fakeFetcher) FetchWithActions(_ context.Context, target string, _ []fetch.Action, _ time.Duration) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.pages[target], nil
}

// fakeKnown marks a fixed URL set as already captured.
type fakeKnown struct {
	known map[string]bool
}

func (f *fakeKnown) IsKnown(_ context.Context, url string) (bool, error) {
	return f.known[url], nil
}

func writeInput(t *testing.T, records []*model.ListingRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.csv")
	if err := export.WriteListings(path, records, false); err != nil {
		t.Fatal(err)
	}
	return path
}

func detailPage(number string) string {
	return `<html><body><a href="tel:` + number + `">call</a></body></html>`
}

// TestWorkerRun tests the extraction stage end to end with fakes.
func TestWorkerRun(t *testing.T) {
	t.Parallel()

	t.Run("enriches placeholder phones from detail pages", func(t *testing.T) {
		t.Parallel()

		recs := []*model.ListingRecord{
			model.NewListingRecord("aaa"),
			model.NewListingRecord("bbb"),
		}
		input := writeInput(t, recs)

		client := &fakeFetcher{pages: map[string]string{
			recs[0].URL: detailPage("0521111111"),
			recs[1].URL: "<html><body>hidden</body></html>",
		}}

		res, err := NewWorker(client).Run(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Processed != 2 {
			t.Errorf("expected 2 processed, got %d", res.Processed)
		}
		if res.PhonesFound != 1 {
			t.Errorf("expected 1 phone found, got %d", res.PhonesFound)
		}
		if res.OutputPath != enrichedPath(input) {
			t.Errorf("unexpected output path: %s", res.OutputPath)
		}

		out, err := export.ReadListings(res.OutputPath)
		if err != nil {
			t.Fatal(err)
		}
		if out[0].Phone != "0521111111" {
			t.Errorf("expected the found number in the output, got %q", out[0].Phone)
		}
		if out[1].Phone != model.PlaceholderPhone {
			t.Errorf("expected the placeholder to survive, got %q", out[1].Phone)
		}
	})

	t.Run("skips known listings without fetching", func(t *testing.T) {
		t.Parallel()

		rec := model.NewListingRecord("known")
		rec.Phone = "0529999999"
		input := writeInput(t, []*model.ListingRecord{rec})

		client := &fakeFetcher{}
		worker := NewWorker(client,
			WithKnownChecker(&fakeKnown{known: map[string]bool{rec.URL: true}}),
		)

		res, err := worker.Run(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.calls != 0 {
			t.Errorf("known listing must not be fetched, got %d calls", client.calls)
		}
		if res.PhonesFound != 1 {
			t.Errorf("a known listing with a real number still counts, got %d", res.PhonesFound)
		}
	})

	t.Run("records that already carry a number are not refetched", func(t *testing.T) {
		t.Parallel()

		rec := model.NewListingRecord("has-phone")
		rec.Phone = "0521234567"
		input := writeInput(t, []*model.ListingRecord{rec})

		client := &fakeFetcher{}
		res, err := NewWorker(client).Run(context.Background(), input)
		if err != nil {
			t.Fatal(err)
		}
		if client.calls != 0 {
			t.Errorf("expected no fetches, got %d", client.calls)
		}
		if res.PhonesFound != 1 {
			t.Errorf("expected 1 phone found, got %d", res.PhonesFound)
		}
	})

	t.Run("fetch failures skip the listing but continue the run", func(t *testing.T) {
		t.Parallel()

		recs := []*model.ListingRecord{model.NewListingRecord("a"), model.NewListingRecord("b")}
		input := writeInput(t, recs)

		client := &fakeFetcher{err: errors.New("render failed")}
		res, err := NewWorker(client).Run(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Processed != 2 {
			t.Errorf("expected both listings processed, got %d", res.Processed)
		}
		if res.PhonesFound != 0 {
			t.Errorf("expected no phones, got %d", res.PhonesFound)
		}
	})

	t.Run("cancellation writes partial output and returns ErrCancelled", func(t *testing.T) {
		t.Parallel()

		recs := []*model.ListingRecord{model.NewListingRecord("a"), model.NewListingRecord("b")}
		input := writeInput(t, recs)

		token := cancel.NewMemoryToken()
		if err := token.Cancel(); err != nil {
			t.Fatal(err)
		}

		client := &fakeFetcher{}
		res, err := NewWorker(client, WithCancelToken(token)).Run(context.Background(), input)
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
		if res.Processed != 0 {
			t.Errorf("expected no listings processed, got %d", res.Processed)
		}

		// The partial output file must still exist for the run record.
		if _, err := export.ReadListings(res.OutputPath); err != nil {
			t.Errorf("expected a partial output file: %v", err)
		}
	})

	t.Run("missing input fails the stage", func(t *testing.T) {
		t.Parallel()

		_, err := NewWorker(&fakeFetcher{}).Run(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
		if err == nil {
			t.Error("expected an error for a missing input file")
		}
	})

	t.Run("detail page state fills empty fields only", func(t *testing.T) {
		t.Parallel()

		rec := model.NewListingRecord("tok")
		rec.Rooms = "3"
		input := writeInput(t, []*model.ListingRecord{rec})

		page := `<html><body>
<a href="tel:0521234567">call</a>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"item":{
  "additionalDetails":{"roomsCount":4},
  "address":{"house":{"floor":2}},
  "contactInfo":{"name":"Dana"}
}}}}
</script>
</body></html>`

		client := &fakeFetcher{pages: map[string]string{rec.URL: page}}
		res, err := NewWorker(client).Run(context.Background(), input)
		if err != nil {
			t.Fatal(err)
		}

		out, err := export.ReadListings(res.OutputPath)
		if err != nil {
			t.Fatal(err)
		}
		if out[0].Rooms != "3" {
			t.Errorf("crawl-stage rooms must not be overwritten, got %q", out[0].Rooms)
		}
		if out[0].Floor != "2" {
			t.Errorf("empty floor should be filled, got %q", out[0].Floor)
		}
		if out[0].OwnerName != "Dana" {
			t.Errorf("empty owner name should be filled, got %q", out[0].OwnerName)
		}
	})
}

// TestEnrichedPath tests output path derivation.
func TestEnrichedPath(t *testing.T) {
	t.Parallel()

	if got := enrichedPath("/data/run.csv"); got != "/data/run_with_phones.csv" {
		t.Errorf("unexpected path: %s", got)
	}
}
