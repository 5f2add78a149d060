package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aatumaykin/gametime/internal/logger"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS snapshot (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
)`

// SQLiteStore keeps values in a single SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *logger.Logger
}

// OpenSQLiteStore opens (creating if needed) the database at path and
// ensures the snapshot table exists.
func OpenSQLiteStore(ctx context.Context, path string, log *logger.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite snapshot path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer is enough for three scalars and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}

	log.Debug("sqlite snapshot store opened", logger.Field{Key: "path", Value: path})
	return &SQLiteStore{db: db, path: path, logger: log}, nil
}

func (s *SQLiteStore) Exists(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshot WHERE key = ?`, key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query snapshot key %s: %w", key, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, value int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshot (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		s.logger.Error("failed to save snapshot key", err,
			logger.Field{Key: "key", Value: key},
			logger.Field{Key: "path", Value: s.path})
		return fmt.Errorf("save snapshot key %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshot WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load snapshot key %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshot WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete snapshot key %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
