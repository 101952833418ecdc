// Package storage is the local file store for uploaded PDFs. Files
// are kept under a single directory with generated names; the
// database row is the only map from a document to its file.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore writes and serves uploaded files from one directory.
type FileStore struct {
	dir string
}

// NewFileStore ensures the upload directory exists.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root of the file store.
func (s *FileStore) Dir() string {
	return s.dir
}

// GenerateFilename returns a collision-free stored name keeping the
// original extension.
func (s *FileStore) GenerateFilename(originalName string) string {
	return uuid.New().String() + filepath.Ext(originalName)
}

// Save writes content under the given stored name.
func (s *FileStore) Save(filename string, content []byte) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

// Open returns a reader over a stored file.
func (s *FileStore) Open(filename string) (io.ReadSeekCloser, error) {
	path, err := s.path(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Path resolves a stored name to its absolute location, for callers
// that hand the file to an external tool.
func (s *FileStore) Path(filename string) (string, error) {
	return s.path(filename)
}

// Remove deletes a stored file. A missing file is not an error; the
// row is authoritative and the file may already be gone.
func (s *FileStore) Remove(filename string) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// path joins and validates the stored name, rejecting anything that
// escapes the upload directory.
func (s *FileStore) path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid stored filename %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}
