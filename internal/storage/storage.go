// Package storage persists uploaded file blobs on local disk. Metadata lives
// in the files table; this package only handles the bytes.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Allowed upload content types. Everything else is rejected before any byte
// hits the disk.
var allowedTypes = map[string]string{
	"image/jpeg":         ".jpg",
	"image/png":          ".png",
	"image/gif":          ".gif",
	"image/webp":         ".webp",
	"application/pdf":    ".pdf",
	"text/plain":         ".txt",
	"text/csv":           ".csv",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
}

// Store writes and reads upload blobs under a single base directory.
type Store struct {
	dir     string
	maxSize int64
}

// New creates the upload directory if needed and returns a Store.
func New(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// AllowedType reports whether contentType may be uploaded.
func AllowedType(contentType string) bool {
	_, ok := allowedTypes[normalizeType(contentType)]
	return ok
}

// MaxSize returns the configured per-file upload ceiling in bytes.
func (s *Store) MaxSize() int64 { return s.maxSize }

// Save streams r to disk under a generated uuid name and returns the stored
// filename. Reads beyond the size ceiling abort the write and remove the
// partial file.
func (s *Store) Save(r io.Reader, contentType string) (string, int64, error) {
	ext, ok := allowedTypes[normalizeType(contentType)]
	if !ok {
		return "", 0, fmt.Errorf("content type %q not allowed", contentType)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create upload file: %w", err)
	}

	// +1 so an exactly-at-limit file passes and an over-limit one is caught.
	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write upload file: %w", err)
	}
	if n > s.maxSize {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("file exceeds maximum size of %d bytes", s.maxSize)
	}
	return name, n, nil
}

// Open returns a reader over a stored file.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(s.pathFor(name))
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return f, nil
}

// Remove deletes a stored file. A missing blob is not an error: the metadata
// row is the source of truth and may outlive a manually-pruned disk.
func (s *Store) Remove(name string) error {
	err := os.Remove(s.pathFor(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file: %w", err)
	}
	return nil
}

// pathFor joins name to the base dir, stripping any path components so a
// crafted filename cannot escape the upload directory.
func (s *Store) pathFor(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func normalizeType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
