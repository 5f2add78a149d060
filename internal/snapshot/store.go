// Package snapshot persists the scalar values the scheduler needs to resume
// after a restart. A Store is a tiny key → int map; backends keep it in
// memory, in a JSON file, in SQLite or in Redis.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aatumaykin/gametime/internal/logger"
)

var (
	// ErrNotFound is returned by Load for a key that was never saved.
	ErrNotFound = errors.New("snapshot key not found")
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown snapshot backend")
)

// Store is the persistence collaborator of the scheduler.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, key string, value int) error
	Load(ctx context.Context, key string) (int, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Path is the JSON document used by the file backend.
	Path string
	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(nil, cfg.Path, log), nil
	case BackendSQLite:
		return OpenSQLiteStore(ctx, cfg.SQLitePath, log)
	case BackendRedis:
		return OpenRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
	default:
		return nil, fmt.Errorf("%w: %s (expected: memory, file, sqlite, redis)", ErrUnknownBackend, cfg.Backend)
	}
}
