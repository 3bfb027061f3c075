// Package upload receives a single product image from a multipart request,
// validates it and commits it to an image store under a generated name.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/catalogo/service/internal/storage"
)

// FieldName is the multipart field carrying the image.
const FieldName = "vinculoImagem"

// DefaultMaxBytes is the default per-image size limit (10 MiB).
const DefaultMaxBytes int64 = 10 << 20

// formOverhead is the room left for the text fields and multipart framing on
// top of the image size limit.
const formOverhead int64 = 1 << 20

// AllowedTypes are the declared content types accepted for an image.
var AllowedTypes = []string{"image/jpeg", "image/png", "image/jpg"}

var (
	// ErrUnsupportedType is returned when the image is not a jpeg or png.
	ErrUnsupportedType = errors.New("unsupported image type: only jpeg, jpg and png are accepted")
	// ErrFileTooLarge is returned when the image exceeds the size limit.
	ErrFileTooLarge = errors.New("image exceeds the maximum allowed size")
	// ErrTooManyFiles is returned when more than one file is sent under FieldName.
	ErrTooManyFiles = errors.New("only one image may be sent")
	// ErrMalformed is returned when the body is not a readable multipart form.
	ErrMalformed = errors.New("request must be a valid multipart/form-data body")
)

// IsRejection reports whether err is a client-side upload rejection rather
// than a failure to store an accepted image.
func IsRejection(err error) bool {
	return errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrTooManyFiles) ||
		errors.Is(err, ErrMalformed)
}

// File describes an image committed to the store.
type File struct {
	Name        string
	Size        int64
	ContentType string
}

// Receiver validates and stores uploaded images.
type Receiver struct {
	store    storage.ImageStore
	maxBytes int64
	allowed  map[string]bool
	newName  func() string
}

// NewReceiver creates a Receiver writing to store. A non-positive maxBytes
// selects DefaultMaxBytes.
func NewReceiver(store storage.ImageStore, maxBytes int64) *Receiver {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	allowed := make(map[string]bool, len(AllowedTypes))
	for _, t := range AllowedTypes {
		allowed[t] = true
	}
	return &Receiver{
		store:    store,
		maxBytes: maxBytes,
		allowed:  allowed,
		newName:  uuid.NewString,
	}
}

// Receive parses r as a multipart form and, when an image is present under
// FieldName, validates and stores it. It returns a nil File when the request
// carries no image. Rejected images are never written to the store. The
// parsed text fields remain available in r.MultipartForm.
func (rc *Receiver) Receive(w http.ResponseWriter, r *http.Request) (*File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, rc.maxBytes+formOverhead)
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	headers := r.MultipartForm.File[FieldName]
	switch {
	case len(headers) == 0:
		return nil, nil
	case len(headers) > 1:
		return nil, ErrTooManyFiles
	}
	fh := headers[0]

	declared, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil || !rc.allowed[strings.ToLower(declared)] {
		return nil, ErrUnsupportedType
	}
	if fh.Size > rc.maxBytes {
		return nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded image: %w", err)
	}
	defer f.Close()

	sniffed, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded image: %w", err)
	}
	if !sniffed.Is("image/jpeg") && !sniffed.Is("image/png") {
		return nil, ErrUnsupportedType
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind uploaded image: %w", err)
	}

	file := &File{
		Name:        rc.newName() + sniffed.Extension(),
		Size:        fh.Size,
		ContentType: sniffed.String(),
	}
	if err := rc.store.Save(r.Context(), file.Name, f, file.Size, file.ContentType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return file, nil
}
