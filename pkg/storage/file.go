package storage

import (
	"context"
	"os"
	"path/filepath"
)

// FileStore keeps the snapshot in a single JSON file.
// Writes go to a temporary file in the same directory and are renamed into
// place, so a reader never sees a partial snapshot.
type FileStore struct {
	path string
}

// NewFileStore creates a file store at path.
// The parent directory will be created if it doesn't exist.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, storageError(err, "create snapshot dir")
	}
	return &FileStore{path: path}, nil
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot file. A missing file is reported as absent.
func (s *FileStore) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageError(err, "read %s", s.path)
	}
	return data, true, nil
}

// Save replaces the snapshot file.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".famtree-*.json")
	if err != nil {
		return storageError(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return storageError(err, "write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return storageError(err, "close %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return storageError(err, "chmod %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return storageError(err, "rename to %s", s.path)
	}
	return nil
}

// Close does nothing for file store.
func (s *FileStore) Close() error {
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
