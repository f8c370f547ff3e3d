package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend persists each key as a JSON file in a directory. Writes are
// whole-file replacements; there is no cross-key coupling, so a crash between
// two Puts can leave the collections mutually inconsistent.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBackend) Get(key string) ([]byte, bool, error) {
	value, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return value, true, nil
}

func (b *FileBackend) Put(key string, value []byte) error {
	if err := os.WriteFile(b.path(key), value, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (b *FileBackend) Delete(key string) error {
	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
