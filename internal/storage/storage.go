// Package storage defines where product images live. The local backend keeps
// them in a flat directory on disk; the MinIO backend works with any
// S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrNotExist is returned when an image with the given name is not stored.
var ErrNotExist = errors.New("image does not exist")

// ErrInvalidName is returned for names that are empty or would escape the store.
var ErrInvalidName = errors.New("invalid image name")

// ImageStore is the interface for saving, probing and removing product images.
type ImageStore interface {
	// Save stores data under name. The image becomes visible only once fully written.
	Save(ctx context.Context, name string, data io.Reader, size int64, contentType string) error
	// Exists reports whether an image is stored under name.
	Exists(ctx context.Context, name string) (bool, error)
	// Delete removes the image stored under name, returning ErrNotExist if absent.
	Delete(ctx context.Context, name string) error
	// Handler serves stored images read-only; the request path is the image name.
	Handler() http.Handler
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
