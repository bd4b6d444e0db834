package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yad2bot/leadscan/internal/model"
)

// Column names, in file order. Consumers import by name, so the order
// only matters for human readers.
const (
	ColPhone       = "phone_number"
	ColOwnerName   = "owner_name"
	ColAddress     = "address"
	ColPrice       = "price"
	ColRooms       = "rooms"
	ColSize        = "size"
	ColTitle       = "title"
	ColURL         = "listing_url"
	ColFloor       = "floor"
	ColPublishDate = "publish_date"
)

// baseHeader is the column set of the crawl-stage file.
var baseHeader = []string{
	ColPhone, ColOwnerName, ColAddress, ColPrice,
	ColRooms, ColSize, ColTitle, ColURL,
}

// enrichedHeader adds the detail-page columns the extraction stage fills.
var enrichedHeader = append(append([]string{}, baseHeader...), ColFloor, ColPublishDate)

// WriteListings writes records to path, header row included even when
// records is empty. With enriched set, the floor and publish-date
// columns are included.
func WriteListings(path string, records []*model.ListingRecord, enriched bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file %s: %w", path, err)
	}
	defer f.Close()

	header := baseHeader
	if enriched {
		header = enrichedHeader
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Phone, rec.OwnerName, rec.Address, rec.Price,
			rec.Rooms, rec.Size, rec.Title, rec.URL,
		}
		if enriched {
			row = append(row, rec.Floor, rec.PublishDate)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush export file: %w", err)
	}
	return f.Close()
}

// ReadListings reads an export file back into records. Columns are
// resolved by header name, so base and enriched files both parse.
func ReadListings(path string) ([]*model.ListingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("export file %s has no header row", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read export header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []*model.ListingRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read export row: %w", err)
		}
		url := field(row, ColURL)
		records = append(records, &model.ListingRecord{
			Token:       strings.TrimPrefix(url, model.ListingURLPrefix),
			Phone:       field(row, ColPhone),
			OwnerName:   field(row, ColOwnerName),
			Address:     field(row, ColAddress),
			Price:       field(row, ColPrice),
			Rooms:       field(row, ColRooms),
			Size:        field(row, ColSize),
			Title:       field(row, ColTitle),
			URL:         url,
			Floor:       field(row, ColFloor),
			PublishDate: field(row, ColPublishDate),
		})
	}
	return records, nil
}

// CountRows returns the number of data rows in an export file, header
// excluded. The monitor uses it to correct stale counters after a stall.
func CountRows(path string) (int, error) {
	records, err := ReadListings(path)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
