package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aatumaykin/gametime/internal/logger"
	"github.com/spf13/afero"
)

// FileStore keeps every key in a single JSON document:
//
//	{"gametime/scheduler/day": 4, "gametime/scheduler/hour": 9, "gametime/scheduler/minute": 0}
//
// Writes replace the document atomically through a temporary file.
type FileStore struct {
	fs       afero.Fs
	filePath string
	logger   *logger.Logger
	mu       sync.Mutex
}

// NewFileStore creates a FileStore at filePath on fs. A nil fs means the
// operating system filesystem.
func NewFileStore(fs afero.Fs, filePath string, log *logger.Logger) *FileStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileStore{
		fs:       fs,
		filePath: filePath,
		logger:   log,
	}
}

// Path returns the location of the JSON document.
func (s *FileStore) Path() string {
	return s.filePath
}

func (s *FileStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return false, err
	}
	_, ok := values[key]
	return ok, nil
}

func (s *FileStore) Load(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return 0, err
	}
	v, ok := values[key]
	if !ok {
		return 0, ErrNotFound
	}
	return v, nil
}

func (s *FileStore) Save(_ context.Context, key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

func (s *FileStore) Close() error { return nil }

// read returns an empty map when the document does not exist yet.
func (s *FileStore) read() (map[string]int, error) {
	data, err := afero.ReadFile(s.fs, s.filePath)
	if os.IsNotExist(err) {
		return make(map[string]int), nil
	}
	if err != nil {
		s.logger.Error("failed to read snapshot file", err,
			logger.Field{Key: "file", Value: s.filePath})
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	values := make(map[string]int)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Error("failed to parse snapshot file", err,
			logger.Field{Key: "file", Value: s.filePath})
		return nil, fmt.Errorf("parse snapshot file: %w", err)
	}
	return values, nil
}

func (s *FileStore) write(values map[string]int) error {
	dir := filepath.Dir(s.filePath)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		s.logger.Error("failed to create snapshot directory", err,
			logger.Field{Key: "dir", Value: dir})
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmpPath := s.filePath + ".tmp"
	file, err := s.fs.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		s.logger.Error("failed to create temporary snapshot file", err,
			logger.Field{Key: "file", Value: tmpPath})
		return fmt.Errorf("create temporary snapshot file: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		file.Close()
		return fmt.Errorf("write temporary snapshot file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync temporary snapshot file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close temporary snapshot file: %w", err)
	}

	if err := s.fs.Rename(tmpPath, s.filePath); err != nil {
		s.logger.Error("failed to rename temporary snapshot file", err,
			logger.Field{Key: "from", Value: tmpPath},
			logger.Field{Key: "to", Value: s.filePath})
		return fmt.Errorf("replace snapshot file: %w", err)
	}

	s.logger.Debug("snapshot file written",
		logger.Field{Key: "keys", Value: len(values)},
		logger.Field{Key: "file", Value: s.filePath})
	return nil
}
