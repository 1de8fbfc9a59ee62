package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/linksleuth/linksleuth/internal/config"
	"github.com/linksleuth/linksleuth/internal/model"
)

// dbFileName is the SQLite database file created inside the cache directory.
const dbFileName = "linksleuth.db"

// Store provides SQLite-based storage for risk assessments keyed by URL.
//
// Design decision: We use a single database file for all assessments rather
// than a file per URL or per run. Sweeps need to enumerate everything, and
// one file keeps backup/restore trivial.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// ttl is how long a stored assessment stays fresh.
	ttl time.Duration
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool

	// TTL is the freshness window for stored assessments.
	// Zero falls back to config.DefaultCacheTTL.
	TTL time.Duration
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		TTL:               config.DefaultCacheTTL,
	}
}

// Open opens or creates a Store at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("cache database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check cache database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer, so the pool stays at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = config.DefaultCacheTTL
	}

	s := &Store{
		db:     db,
		dbPath: dbPath,
		ttl:    ttl,
	}

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

// TTL returns the freshness window the store was opened with.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- One row per assessed URL; the full assessment lives in payload as JSON.
	CREATE TABLE IF NOT EXISTS assessments (
		url TEXT PRIMARY KEY,
		assessed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		level TEXT NOT NULL,
		score INTEGER NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_assessed_at ON assessments(assessed_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Entry is one cached assessment with its freshness metadata.
type Entry struct {
	// URL is the normalized URL the row is keyed by.
	URL string

	// Timestamp is when the assessment was stored.
	Timestamp time.Time

	// TTL is the freshness window that applies to this entry.
	TTL time.Duration

	// Assessment is the stored result.
	Assessment *model.RiskAssessment
}

// Expired reports whether the entry's TTL has elapsed at the given instant.
func (e *Entry) Expired(now time.Time) bool {
	return now.Sub(e.Timestamp) > e.TTL
}

// Put stores an assessment for a URL, overwriting any previous row and
// resetting its timestamp.
func (s *Store) Put(ctx context.Context, url string, ra *model.RiskAssessment) error {
	payload, err := json.Marshal(ra)
	if err != nil {
		return fmt.Errorf("failed to serialize assessment: %w", err)
	}

	query := `
	INSERT INTO assessments (url, level, score, payload, assessed_at)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(url) DO UPDATE SET
		level = excluded.level,
		score = excluded.score,
		payload = excluded.payload,
		assessed_at = CURRENT_TIMESTAMP
	`

	_, err = s.db.ExecContext(ctx, query, url, ra.LevelText, ra.Score, string(payload))
	if err != nil {
		return fmt.Errorf("failed to store assessment: %w", err)
	}

	return nil
}

// Get retrieves a fresh assessment for a URL. It returns nil without error
// when the URL was never assessed or its entry expired; expired rows are
// deleted on the way out so the sweep never revisits them.
func (s *Store) Get(ctx context.Context, url string) (*model.RiskAssessment, error) {
	query := `
	SELECT assessed_at, payload FROM assessments
	WHERE url = ?
	`

	var assessedAt, payload string
	err := s.db.QueryRowContext(ctx, query, url).Scan(&assessedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	storedAt := parseTimestamp(assessedAt)
	if time.Now().UTC().Sub(storedAt) > s.ttl {
		if err := s.Evict(ctx, url); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var ra model.RiskAssessment
	if err := json.Unmarshal([]byte(payload), &ra); err != nil {
		return nil, fmt.Errorf("failed to parse assessment: %w", err)
	}

	return &ra, nil
}

// Evict removes the entry for a URL. Removing an absent URL is not an error.
func (s *Store) Evict(ctx context.Context, url string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assessments WHERE url = ?", url)
	if err != nil {
		return fmt.Errorf("failed to evict assessment: %w", err)
	}
	return nil
}

// All returns every stored entry, fresh or expired, oldest first.
// The sweeper uses this to revalidate the whole cache.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	query := `
	SELECT url, assessed_at, payload FROM assessments
	ORDER BY assessed_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var url, assessedAt, payload string
		if err := rows.Scan(&url, &assessedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan assessment row: %w", err)
		}

		entry := Entry{
			URL:       url,
			Timestamp: parseTimestamp(assessedAt),
			TTL:       s.ttl,
		}
		var ra model.RiskAssessment
		if err := json.Unmarshal([]byte(payload), &ra); err == nil {
			entry.Assessment = &ra
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Len returns the number of stored entries, fresh or expired.
func (s *Store) Len(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
