package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FileStorage keeps each document in <dir>/<name>.json.
// Writes go to a temporary file in the same directory which is then renamed over the old file,
// so a crash mid-write never leaves a truncated document behind.
type FileStorage struct {
	dir string
}

// NewFileStorage creates dir if needed and returns a FileStorage rooted at it.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("error creating data directory %q: %w", dir, err)
	}

	return &FileStorage{dir: dir}, nil
}

// Path returns the file path used for the named document.
func (s *FileStorage) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Get reads the named document from disk.
func (s *FileStorage) Get(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotExist, name)
		}

		return nil, fmt.Errorf("error reading document %q: %w", name, err)
	}

	return data, nil
}

// Put atomically replaces the named document on disk.
func (s *FileStorage) Put(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file for %q: %w", name, err)
	}
	tmpPath := tmp.Name()

	// Removing a renamed file fails harmlessly.
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("error writing document %q: %w", name, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("error syncing document %q: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error closing document %q: %w", name, err)
	}
	if err = os.Chmod(tmpPath, filePerm); err != nil {
		return fmt.Errorf("error setting permissions on %q: %w", name, err)
	}
	if err = os.Rename(tmpPath, s.Path(name)); err != nil {
		return fmt.Errorf("error replacing document %q: %w", name, err)
	}

	return nil
}

// Ping checks that the data directory still exists.
func (s *FileStorage) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("error accessing data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %q is not a directory", s.dir)
	}

	return nil
}
