package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"
)

// StoredFile is a file written under the storage root. Path is slash-separated
// and relative to the root.
type StoredFile struct {
	Path string
	Size int64
}

// Storage writes uploads to local disk below a single root directory.
type Storage struct {
	validator *PathValidator
	now       func() time.Time
}

func New(root string) (*Storage, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Storage{validator: validator, now: time.Now}, nil
}

func (s *Storage) RootAbs() string {
	return s.validator.RootAbs()
}

func (s *Storage) Resolve(clientPath string) (string, error) {
	return s.validator.ResolvePath(clientPath)
}

// Save streams r to dir/<unix-ms>-<name>. name must already be sanitised.
func (s *Storage) Save(dir string, name string, r io.Reader) (StoredFile, error) {
	rel := path.Join(dir, strconv.FormatInt(s.now().UnixMilli(), 10)+"-"+name)

	resolved, err := s.Resolve(rel)
	if err != nil {
		return StoredFile{}, err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("create parent directory: %w", err)
	}

	file, err := os.OpenFile(resolved, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create %q: %w", rel, err)
	}

	size, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(resolved)
		return StoredFile{}, fmt.Errorf("write %q: %w", rel, errors.Join(copyErr, closeErr))
	}

	return StoredFile{Path: rel, Size: size}, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Storage) Remove(rel string) error {
	resolved, err := s.Resolve(rel)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", rel, err)
	}
	return nil
}
