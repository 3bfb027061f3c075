package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements ImageStore on a flat directory.
type LocalStorage struct {
	dir string
}

// NewLocalStorage ensures dir exists and returns a store rooted at its
// absolute path.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve image dir %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir %q: %w", abs, err)
	}
	return &LocalStorage{dir: abs}, nil
}

// Dir returns the absolute root directory of the store.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save writes data to a temporary file in the store directory and renames it
// into place, so readers never observe a partially written image.
func (s *LocalStorage) Save(_ context.Context, name string, data io.Reader, _ int64, _ string) error {
	if err := validateName(name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, data); err != nil {
		return fmt.Errorf("write image %q: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync image %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close image %q: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod image %q: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("commit image %q: %w", name, err)
	}
	committed = true
	return nil
}

// Exists reports whether name is present in the store directory.
func (s *LocalStorage) Exists(_ context.Context, name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	_, err := os.Stat(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat image %q: %w", name, err)
	}
	return true, nil
}

// Delete removes name from the store directory.
func (s *LocalStorage) Delete(_ context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	if err != nil {
		return fmt.Errorf("remove image %q: %w", name, err)
	}
	return nil
}

// Handler serves files from the store directory. Directory listings and
// in-flight temp files are hidden.
func (s *LocalStorage) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if validateName(name) != nil || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
