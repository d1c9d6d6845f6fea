// Package sqlite persists aggregate documents in an embedded SQLite file,
// one JSON document per user, partitioned by userKey.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aoi-dev/vendormail/internal/domain"
	"github.com/aoi-dev/vendormail/internal/store"
)

var _ store.AggregateStore = (*Store)(nil)

type Store struct {
	conn *sql.DB
}

// New opens (or creates) the database at path and runs migrations.
// Use ":memory:" for tests.
func New(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL keeps reads open while the pipeline writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS vendor_comparisons (
			id         TEXT NOT NULL,
			user_key   TEXT NOT NULL,
			document   TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (id, user_key)
		);
		CREATE INDEX IF NOT EXISTS idx_vendor_comparisons_user
			ON vendor_comparisons(user_key, updated_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating vendor_comparisons table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping reports whether the database is reachable; used by the health probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// GetLatestByUser returns the most recently written aggregate within the
// user's partition, ordered by write time.
func (s *Store) GetLatestByUser(ctx context.Context, userKey string) (*domain.VendorComparison, error) {
	var doc string
	err := s.conn.QueryRowContext(ctx,
		`SELECT document
		 FROM vendor_comparisons
		 WHERE user_key = ?
		 ORDER BY updated_at DESC, rowid DESC
		 LIMIT 1`,
		userKey,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading aggregate for %s: %w", userKey, err)
	}

	var agg domain.VendorComparison
	if err := json.Unmarshal([]byte(doc), &agg); err != nil {
		return nil, fmt.Errorf("sqlite: decoding aggregate for %s: %w", userKey, err)
	}
	return &agg, nil
}

// Upsert writes the aggregate, overwriting any existing row with the same
// (id, userKey). A redelivered batch therefore rewrites the document instead
// of duplicating it.
func (s *Store) Upsert(ctx context.Context, agg *domain.VendorComparison) (*domain.VendorComparison, error) {
	doc, err := json.Marshal(agg)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encoding aggregate %s: %w", agg.ID, err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO vendor_comparisons (id, user_key, document, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (id, user_key) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
		agg.ID,
		agg.PartitionKey(),
		string(doc),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: upserting aggregate %s: %w", agg.ID, err)
	}
	return agg, nil
}
