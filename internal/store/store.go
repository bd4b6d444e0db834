package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"golang.org/x/crypto/sha3"

	"github.com/yad2bot/leadscan/internal/model"
)

// Store is the SQLite-backed lead database. One file serves all runs,
// so the dedup check spans run boundaries.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. The crawl process and the
	// supervisor may hold the file open at the same time.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the lead store in the given directory.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, "leadscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("lead store not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check lead store path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open lead store: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) createTables() error {
	schema := `
	-- Captured leads, one row per listing ever exported with a phone.
	CREATE TABLE IF NOT EXISTS leads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		token_hash TEXT NOT NULL UNIQUE,
		owner_name TEXT,
		address TEXT,
		price TEXT,
		captured_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_leads_captured ON leads(captured_at);

	-- One row per finished run.
	CREATE TABLE IF NOT EXISTS run_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_name TEXT NOT NULL,
		mode TEXT NOT NULL,
		recency TEXT NOT NULL,
		city_code TEXT,
		status TEXT NOT NULL,
		kept INTEGER DEFAULT 0,
		phones_found INTEGER DEFAULT 0,
		duplicates INTEGER DEFAULT 0,
		csv_path TEXT,
		started_at DATETIME,
		finished_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON run_results(run_name);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// tokenHash derives the stored lead identity from a listing token.
func tokenHash(token string) string {
	sum := sha3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// tokenFromURL recovers the listing token from a detail-page URL.
func tokenFromURL(url string) string {
	return strings.TrimSuffix(strings.TrimPrefix(url, model.ListingURLPrefix), "/")
}

// IsKnown reports whether the listing behind url was captured by an
// earlier run.
func (s *Store) IsKnown(ctx context.Context, url string) (bool, error) {
	token := tokenFromURL(url)
	if token == "" {
		return false, nil
	}

	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM leads WHERE token_hash = ?", tokenHash(token)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query lead store: %w", err)
	}
	return true, nil
}

// RecordLead stores a captured lead. Re-recording the same listing
// refreshes its fields and capture time.
func (s *Store) RecordLead(ctx context.Context, rec *model.ListingRecord) error {
	query := `
	INSERT INTO leads (token_hash, owner_name, address, price)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(token_hash) DO UPDATE SET
		owner_name = excluded.owner_name,
		address = excluded.address,
		price = excluded.price,
		captured_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query,
		tokenHash(rec.Token), rec.OwnerName, rec.Address, rec.Price); err != nil {
		return fmt.Errorf("failed to record lead: %w", err)
	}
	return nil
}

// SaveRunResult stores a finished run's report.
func (s *Store) SaveRunResult(ctx context.Context, report *model.RunReport) error {
	query := `
	INSERT INTO run_results
		(run_name, mode, recency, city_code, status, kept, phones_found, duplicates, csv_path, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		report.RunName,
		report.Params.Mode,
		report.Params.Recency,
		report.Params.CityCode,
		string(report.Status),
		report.Kept,
		report.PhonesFound,
		report.Duplicates,
		report.OutputPath,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.FinishedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to save run result: %w", err)
	}
	return nil
}

// CountLeads returns the number of captured leads.
func (s *Store) CountLeads(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return n, nil
}

// LastRunResult returns the most recent stored result for a run name.
// Rerunning the same parameters on the same day records a new row; the
// latest one reflects what is on disk. ErrNotFound when none exists.
func (s *Store) LastRunResult(ctx context.Context, runName string) (*model.RunReport, error) {
	query := `
	SELECT run_name, mode, recency, city_code, status, kept, phones_found, duplicates, csv_path, started_at, finished_at
	FROM run_results WHERE run_name = ? ORDER BY id DESC LIMIT 1
	`

	var report model.RunReport
	var status, started, finished string
	err := s.db.QueryRowContext(ctx, query, runName).Scan(
		&report.RunName,
		&report.Params.Mode,
		&report.Params.Recency,
		&report.Params.CityCode,
		&status,
		&report.Kept,
		&report.PhonesFound,
		&report.Duplicates,
		&report.OutputPath,
		&started,
		&finished,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run result: %w", err)
	}

	report.Status = model.RunStatus(status)
	if t, err := time.Parse(time.RFC3339, started); err == nil {
		report.StartedAt = t
	}
	if t, err := time.Parse(time.RFC3339, finished); err == nil {
		report.FinishedAt = t
	}
	return &report, nil
}
