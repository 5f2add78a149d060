package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aatumaykin/gametime/internal/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	log, err := logger.New(logger.Config{Level: "error", Format: "text", Output: "discard"})
	if err != nil {
		panic(err)
	}
	return log
}

// storeContract runs the behaviour every backend must share.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	ok, err := store.Exists(ctx, "gametime/scheduler/hour")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Load(ctx, "gametime/scheduler/hour")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "gametime/scheduler/hour", 9))
	require.NoError(t, store.Save(ctx, "gametime/scheduler/minute", 0))
	require.NoError(t, store.Save(ctx, "gametime/scheduler/day", 4))

	ok, err = store.Exists(ctx, "gametime/scheduler/hour")
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := store.Load(ctx, "gametime/scheduler/day")
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	v, err = store.Load(ctx, "gametime/scheduler/minute")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	require.NoError(t, store.Save(ctx, "gametime/scheduler/hour", 21))
	v, err = store.Load(ctx, "gametime/scheduler/hour")
	require.NoError(t, err)
	assert.Equal(t, 21, v)

	require.NoError(t, store.Delete(ctx, "gametime/scheduler/hour"))
	require.NoError(t, store.Delete(ctx, "gametime/scheduler/hour"))
	ok, err = store.Exists(ctx, "gametime/scheduler/hour")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Close())
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	storeContract(t, NewFileStore(fs, "/var/lib/gametime/snapshot.json", testLogger()))
}

func TestFileStore_DocumentSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	path := "/data/snapshot.json"

	first := NewFileStore(fs, path, testLogger())
	require.NoError(t, first.Save(ctx, "k", 42))

	exists, err := afero.Exists(fs, path+".tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temporary file must be renamed away")

	second := NewFileStore(fs, path, testLogger())
	v, err := second.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, path, second.Path())
}

func TestFileStore_CorruptDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s.json", []byte("{not json"), 0644))

	store := NewFileStore(fs, "/s.json", testLogger())
	_, err := store.Load(context.Background(), "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStore_OSFilesystem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	storeContract(t, NewFileStore(nil, path, testLogger()))
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "snapshot.db"), testLogger())
	require.NoError(t, err)
	storeContract(t, store)
}

func TestSQLiteStore_EmptyPath(t *testing.T) {
	_, err := OpenSQLiteStore(context.Background(), "", testLogger())
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "default is memory", cfg: Config{}},
		{name: "memory", cfg: Config{Backend: "memory"}},
		{name: "file", cfg: Config{Backend: "file", Path: filepath.Join(dir, "s.json")}},
		{name: "sqlite", cfg: Config{Backend: "SQLite", SQLitePath: filepath.Join(dir, "s.db")}},
		{name: "unknown", cfg: Config{Backend: "etcd"}, wantErr: ErrUnknownBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.cfg, testLogger())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, store.Save(ctx, "k", 1))
			require.NoError(t, store.Close())
		})
	}
}

func TestOpenRedisStore_Errors(t *testing.T) {
	_, err := OpenRedisStore(context.Background(), RedisOptions{}, testLogger())
	assert.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = OpenRedisStore(ctx, RedisOptions{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond}, testLogger())
	assert.Error(t, err)
}
