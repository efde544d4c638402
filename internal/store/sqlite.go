package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	keyBalance    = "balance"
	keyStatistics = "statistics"
)

// SQLite stores the balance and statistics as rows of a key/value table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`)
	return err
}

func (s *SQLite) Load(ctx context.Context) (Snapshot, error) {
	var (
		snap    Snapshot
		balance string
		updated time.Time
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, updated_at FROM kv WHERE key = ?", keyBalance,
	).Scan(&balance, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load balance: %w", err)
	}

	snap.Balance, err = strconv.Atoi(balance)
	if err != nil {
		return Snapshot{}, fmt.Errorf("invalid stored balance %q: %w", balance, err)
	}
	snap.UpdatedAt = updated

	var stats string
	err = s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", keyStatistics).Scan(&stats)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return snap, nil
	case err != nil:
		return Snapshot{}, fmt.Errorf("failed to load statistics: %w", err)
	}
	if err := json.Unmarshal([]byte(stats), &snap.Stats); err != nil {
		return Snapshot{}, fmt.Errorf("invalid stored statistics: %w", err)
	}
	return snap, nil
}

func (s *SQLite) Save(ctx context.Context, snap Snapshot) error {
	stats, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode statistics: %w", err)
	}
	updated := snap.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := tx.ExecContext(ctx, upsert, keyBalance, strconv.Itoa(snap.Balance), updated.UTC()); err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, keyStatistics, string(stats), updated.UTC()); err != nil {
		return fmt.Errorf("failed to save statistics: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
