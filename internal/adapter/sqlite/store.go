// Package sqlite stores sightings in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sightings (
  id          INTEGER PRIMARY KEY,
  city        TEXT NOT NULL,
  species     TEXT NOT NULL DEFAULT '',
  latin_name  TEXT NOT NULL DEFAULT '',
  date        TEXT NOT NULL DEFAULT '',
  recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sightings_city ON sightings(city);
`

// Store implements domain.Repository on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer keeps ID assignment serialised.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// List returns every stored sighting ordered by ID.
func (s *Store) List(ctx context.Context) ([]domain.Sighting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, city, species, latin_name, date FROM sightings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sightings: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Sighting, 0)
	for rows.Next() {
		var sg domain.Sighting
		if err := rows.Scan(&sg.ID, &sg.City, &sg.Species, &sg.LatinName, &sg.Date); err != nil {
			return nil, fmt.Errorf("scan sighting: %w", err)
		}
		out = append(out, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sightings: %w", err)
	}
	return out, nil
}

// Add assigns the next ID inside a transaction and inserts the sighting.
func (s *Store) Add(ctx context.Context, n domain.NewSighting) (stored domain.Sighting, err error) {
	if err := n.Validate(); err != nil {
		return domain.Sighting{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Sighting{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var maxID int
	if err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM sightings`).Scan(&maxID); err != nil {
		return domain.Sighting{}, fmt.Errorf("next id: %w", err)
	}

	id, err := domain.IDAfter(maxID)
	if err != nil {
		return domain.Sighting{}, err
	}
	stored = n.WithID(id)
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO sightings (id, city, species, latin_name, date) VALUES (?, ?, ?, ?, ?)`,
		stored.ID, stored.City, stored.Species, stored.LatinName, stored.Date,
	); err != nil {
		return domain.Sighting{}, fmt.Errorf("insert sighting: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Sighting{}, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
