package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/yad2bot/leadscan/internal/crawler"
	"github.com/yad2bot/leadscan/internal/export"
	"github.com/yad2bot/leadscan/internal/fetch"
	"github.com/yad2bot/leadscan/internal/model"
	"github.com/yad2bot/leadscan/internal/phone"
	"github.com/yad2bot/leadscan/internal/progress"
	"github.com/yad2bot/leadscan/internal/store"
)

// listFetcher serves one canned list page for every target.
type listFetcher struct {
	page string
}

func (f *listFetcher) Fetch(_ context.Context, _ string) (string, error) {
	return f.page, nil
}

// detailFetcher serves one canned detail page for every target.
type detailFetcher struct {
	page string
}

func (f *detailFetcher) FetchWithActions(_ context.Context, _ string, _ []fetch.Action, _ time.Duration) (string, error) {
	return f.page, nil
}

func onePrivateListingPage(t *testing.T, token string) string {
	t.Helper()
	state := map[string]any{
		"props": map[string]any{
			"pageProps": map[string]any{
				"feed": map[string]any{
					"feedItems": []any{
						map[string]any{"token": token, "adType": "private"},
					},
				},
			},
		},
	}
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatal(err)
	}
	return `<html><body><script id="__NEXT_DATA__" type="application/json">` +
		string(data) + `</script></body></html>`
}

// TestCrawlStep tests the crawl stage as a pipeline step.
func TestCrawlStep(t *testing.T) {
	t.Parallel()

	files := progress.NewFiles(t.TempDir(), "run")
	writer := progress.NewWriter(files.CrawlSnapshot())

	c := crawler.New(&listFetcher{page: onePrivateListingPage(t, "tok1")},
		crawler.WithProgressWriter(writer),
		crawler.WithListingsPerPage(5),
	)
	step := &CrawlStep{Crawler: c, Files: files, Progress: writer, Logger: slog.Default()}

	report := &model.RunReport{
		Params: model.RunParams{Mode: "rent", Recency: "all", PageBudget: 1},
	}
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Status != model.StatusCompleted {
		t.Errorf("expected completed, got %s", report.Status)
	}
	if report.Kept != 1 {
		t.Errorf("expected 1 kept, got %d", report.Kept)
	}
	if report.OutputPath != files.Intermediate() {
		t.Errorf("unexpected output path: %s", report.OutputPath)
	}

	records, err := export.ReadListings(files.Intermediate())
	if err != nil {
		t.Fatalf("expected the intermediate file: %v", err)
	}
	if len(records) != 1 || records[0].Token != "tok1" {
		t.Errorf("unexpected intermediate content: %+v", records)
	}

	// The final snapshot marks the stage completed.
	snap, err := progress.NewReader(files.CrawlSnapshot()).Read()
	if err != nil {
		t.Fatalf("expected a snapshot: %v", err)
	}
	if snap.Stage != model.StageCompleted {
		t.Errorf("expected completed stage, got %s", snap.Stage)
	}
}

// TestExtractStep tests the extraction stage as a pipeline step.
func TestExtractStep(t *testing.T) {
	t.Parallel()

	files := progress.NewFiles(t.TempDir(), "run")
	rec := model.NewListingRecord("tok1")
	if err := export.WriteListings(files.Intermediate(), []*model.ListingRecord{rec}, false); err != nil {
		t.Fatal(err)
	}

	page := `<html><body><a href="tel:0521234567">call</a></body></html>`
	step := &ExtractStep{
		Worker: phone.NewWorker(&detailFetcher{page: page}),
		Files:  files,
	}

	report := &model.RunReport{}
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Status != model.StatusCompleted {
		t.Errorf("expected completed, got %s", report.Status)
	}
	if report.PhonesFound != 1 {
		t.Errorf("expected 1 phone, got %d", report.PhonesFound)
	}
	if report.OutputPath != files.Final() {
		t.Errorf("unexpected output path: %s", report.OutputPath)
	}
}

// TestRecordStep tests lead persistence after extraction.
func TestRecordStep(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := progress.NewFiles(dir, "run")

	st, err := store.Open(dir, store.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })

	withPhone := model.NewListingRecord("got-phone")
	withPhone.Phone = "0521234567"
	noPhone := model.NewListingRecord("no-phone")
	if err := export.WriteListings(files.Final(), []*model.ListingRecord{withPhone, noPhone}, true); err != nil {
		t.Fatal(err)
	}

	step := &RecordStep{Store: st, Files: files, Logger: slog.Default()}
	if err := step.Do(context.Background(), &model.RunReport{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	known, err := st.IsKnown(ctx, withPhone.URL)
	if err != nil {
		t.Fatal(err)
	}
	if !known {
		t.Error("the enriched listing must be recorded")
	}
	known, err = st.IsKnown(ctx, noPhone.URL)
	if err != nil {
		t.Fatal(err)
	}
	if known {
		t.Error("a listing without a phone must stay eligible")
	}

	t.Run("a missing enriched file is not a failure", func(t *testing.T) {
		t.Parallel()

		missing := &RecordStep{
			Store:  st,
			Files:  progress.NewFiles(t.TempDir(), "empty"),
			Logger: slog.Default(),
		}
		if err := missing.Do(context.Background(), &model.RunReport{}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
