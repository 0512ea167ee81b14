package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store over a local SQLite database file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the SQLite database at
// dbPath and ensures the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS soundings (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			observed_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sounding_levels (
			sounding_id TEXT NOT NULL REFERENCES soundings(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			pressure REAL NOT NULL,
			height REAL NOT NULL,
			temperature REAL NOT NULL,
			PRIMARY KEY (sounding_id, idx)
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveSounding stores a sounding and its levels in one transaction
func (s *SQLiteStore) SaveSounding(ctx context.Context, snd *Sounding) error {
	if snd.ID == "" {
		snd.ID = uuid.New().String()
	}
	if snd.CreatedAt.IsZero() {
		snd.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO soundings (id, name, observed_at, created_at) VALUES (?, ?, ?, ?)`,
		snd.ID, snd.Name, snd.ObservedAt, snd.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sounding: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sounding_levels (sounding_id, idx, pressure, height, temperature) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare level insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range snd.Levels {
		if _, err := stmt.ExecContext(ctx, snd.ID, i, l.Pressure, l.Height, l.Temperature); err != nil {
			return fmt.Errorf("failed to insert level %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetSounding fetches a sounding and its levels by ID
func (s *SQLiteStore) GetSounding(ctx context.Context, id string) (*Sounding, error) {
	snd := &Sounding{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT name, observed_at, created_at FROM soundings WHERE id = ?`, id).
		Scan(&snd.Name, &snd.ObservedAt, &snd.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sounding: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pressure, height, temperature FROM sounding_levels WHERE sounding_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query levels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Level
		if err := rows.Scan(&l.Pressure, &l.Height, &l.Temperature); err != nil {
			return nil, fmt.Errorf("failed to scan level: %w", err)
		}
		snd.Levels = append(snd.Levels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading levels: %w", err)
	}

	return snd, nil
}

// ListSoundings returns summaries of all stored soundings, newest first
func (s *SQLiteStore) ListSoundings(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.observed_at, s.created_at, COUNT(l.sounding_id)
		FROM soundings s
		LEFT JOIN sounding_levels l ON l.sounding_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query soundings: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Name, &sm.ObservedAt, &sm.CreatedAt, &sm.LevelCount); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
