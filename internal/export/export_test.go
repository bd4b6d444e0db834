package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yad2bot/leadscan/internal/model"
)

func sampleRecord(token string) *model.ListingRecord {
	rec := model.NewListingRecord(token)
	rec.OwnerName = "Dana"
	rec.Address = "Haifa, Hadar, Herzl 12"
	rec.Price = "3500"
	rec.Rooms = "3"
	rec.Size = "75"
	rec.Title = "3 rooms in Hadar"
	return rec
}

// TestWriteListings tests CSV export.
func TestWriteListings(t *testing.T) {
	t.Parallel()

	t.Run("empty record set still writes the header", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.csv")
		if err := WriteListings(path, nil, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		got := strings.TrimSpace(string(data))
		want := strings.Join(baseHeader, ",")
		if got != want {
			t.Errorf("expected header-only file %q, got %q", want, got)
		}
	})

	t.Run("enriched files carry the detail columns", func(t *testing.T) {
		t.Parallel()

		rec := sampleRecord("abc")
		rec.Floor = "2"
		rec.PublishDate = "27/08/26"

		path := filepath.Join(t.TempDir(), "out.csv")
		if err := WriteListings(path, []*model.ListingRecord{rec}, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), ColPublishDate) {
			t.Error("enriched header should contain the publish date column")
		}
		if !strings.Contains(string(data), "27/08/26") {
			t.Error("enriched row should contain the publish date value")
		}
	})
}

// TestReadListings tests header-driven CSV import.
func TestReadListings(t *testing.T) {
	t.Parallel()

	t.Run("roundtrip recovers every field and the token", func(t *testing.T) {
		t.Parallel()

		recs := []*model.ListingRecord{sampleRecord("tok1"), sampleRecord("tok2")}
		recs[1].Phone = "0521234567"

		path := filepath.Join(t.TempDir(), "out.csv")
		if err := WriteListings(path, recs, false); err != nil {
			t.Fatal(err)
		}

		got, err := ReadListings(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got))
		}
		if got[0].Token != "tok1" {
			t.Errorf("token not recovered from url, got %q", got[0].Token)
		}
		if got[0].Address != recs[0].Address {
			t.Errorf("unexpected address: %s", got[0].Address)
		}
		if got[1].Phone != "0521234567" {
			t.Errorf("unexpected phone: %s", got[1].Phone)
		}
		// Base files have no detail columns.
		if got[0].Floor != "" {
			t.Errorf("expected empty floor, got %q", got[0].Floor)
		}
	})

	t.Run("enriched files parse by header name", func(t *testing.T) {
		t.Parallel()

		rec := sampleRecord("tok")
		rec.Floor = "4"

		path := filepath.Join(t.TempDir(), "out.csv")
		if err := WriteListings(path, []*model.ListingRecord{rec}, true); err != nil {
			t.Fatal(err)
		}

		got, err := ReadListings(path)
		if err != nil {
			t.Fatal(err)
		}
		if got[0].Floor != "4" {
			t.Errorf("unexpected floor: %s", got[0].Floor)
		}
	})

	t.Run("missing file returns an error", func(t *testing.T) {
		t.Parallel()

		if _, err := ReadListings(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("empty file returns an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.csv")
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadListings(path); err == nil {
			t.Error("expected an error for a file with no header")
		}
	})
}

// TestCountRows tests data-row counting.
func TestCountRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	recs := []*model.ListingRecord{sampleRecord("a"), sampleRecord("b"), sampleRecord("c")}
	if err := WriteListings(path, recs, false); err != nil {
		t.Fatal(err)
	}

	n, err := CountRows(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows, got %d", n)
	}
}
