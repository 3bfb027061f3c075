package product

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/catalogo/service/internal/logging"
	"github.com/catalogo/service/internal/storage"
)

// Bounds of a NUMERIC(10,2) price input, checked on the parsed exponent
// before the value is rescaled.
const (
	maxPriceLen       = 32
	maxPriceIntDigits = 8
)

// maxPrice is the exclusive upper bound of a NUMERIC(10,2) column.
var maxPrice = decimal.New(1, maxPriceIntDigits)

// ErrImageRequired is returned when a product is created without an image.
var ErrImageRequired = &ValidationError{Field: "vinculoImagem", Message: "image required"}

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StorageError reports a failed database step of a write flow. ImageRemoved
// tells whether the image received with the request was compensated.
type StorageError struct {
	Op           string
	ImageRemoved bool
	Err          error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Fields carries the product fields of a write request as sent by the
// client. A nil field was not supplied.
type Fields struct {
	CategoryID *string
	Name       *string
	Price      *string
}

// Service coordinates product writes across the database and the image
// store. Images are always written before the row and removed again when the
// row write does not happen; an old image is removed only after the row stops
// referencing it.
type Service struct {
	store  Store
	images storage.ImageStore
}

// NewService creates a new product Service.
func NewService(store Store, images storage.ImageStore) *Service {
	return &Service{store: store, images: images}
}

// List returns all products, never nil.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// GetByID returns a product by id.
func (s *Service) GetByID(ctx context.Context, id int64) (*Product, error) {
	return s.store.GetByID(ctx, id)
}

// Create inserts a product referencing image, an already stored image name.
// Every field is required. When validation or the insert fails the image is
// removed before returning.
func (s *Service) Create(ctx context.Context, f Fields, image string) (*Product, error) {
	if image == "" {
		return nil, ErrImageRequired
	}

	p := &Product{ImageRef: &image}
	if err := applyFields(p, f, true); err != nil {
		s.discardImage(ctx, image, "invalid fields")
		return nil, err
	}

	if err := s.store.Create(ctx, p); err != nil {
		removed := s.discardImage(ctx, image, "insert failed")
		return nil, &StorageError{Op: "create product", ImageRemoved: removed, Err: err}
	}

	logging.FromContext(ctx).Info("product created", "product_id", p.ID, "image", image)
	return p, nil
}

// Update applies the supplied fields to product id, keeping stored values for
// fields that were not sent. When newImage is not empty it replaces the
// current image: the new image is removed if the update does not succeed,
// and the previous one is removed once it has.
func (s *Service) Update(ctx context.Context, id int64, f Fields, newImage string) (*Product, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		removed := newImage != "" && s.discardImage(ctx, newImage, "fetch failed")
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "get product", ImageRemoved: removed, Err: err}
	}

	updated := *existing
	if err := applyFields(&updated, f, false); err != nil {
		s.discardImage(ctx, newImage, "invalid fields")
		return nil, err
	}
	if newImage != "" {
		updated.ImageRef = &newImage
	}

	if err := s.store.Update(ctx, &updated); err != nil {
		removed := newImage != "" && s.discardImage(ctx, newImage, "update failed")
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "update product", ImageRemoved: removed, Err: err}
	}

	if newImage != "" && existing.ImageRef != nil && *existing.ImageRef != newImage {
		s.discardImage(ctx, *existing.ImageRef, "replaced")
	}

	logging.FromContext(ctx).Info("product updated", "product_id", id)
	return &updated, nil
}

// Delete removes product id and then its image. A failure to remove the
// image never fails the request.
func (s *Service) Delete(ctx context.Context, id int64) (*Product, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return nil, &StorageError{Op: "delete product", Err: err}
	}

	if existing.ImageRef != nil {
		s.discardImage(ctx, *existing.ImageRef, "product deleted")
	}

	logging.FromContext(ctx).Info("product deleted", "product_id", id)
	return existing, nil
}

// discardImage removes name from the image store on a best-effort basis and
// reports whether the image is gone afterwards. It runs detached from request
// cancellation.
func (s *Service) discardImage(ctx context.Context, name, reason string) bool {
	if name == "" {
		return true
	}
	logger := logging.WithFields(ctx, "image", name, "reason", reason)
	ctx = context.WithoutCancel(ctx)

	exists, err := s.images.Exists(ctx, name)
	if err != nil {
		logger.Warn("image cleanup failed", "error", err)
		return false
	}
	if !exists {
		logger.Info("image already absent")
		return true
	}

	if err := s.images.Delete(ctx, name); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			logger.Info("image already absent")
			return true
		}
		logger.Warn("image cleanup failed", "error", err)
		return false
	}
	logger.Info("image removed")
	return true
}

// applyFields validates the supplied fields and copies them into p. With
// required set, every field must be present.
func applyFields(p *Product, f Fields, required bool) error {
	if f.Name != nil || required {
		name := strings.TrimSpace(deref(f.Name))
		if name == "" {
			return &ValidationError{Field: "nomeProduto", Message: "nomeProduto is required"}
		}
		p.Name = name
	}

	if f.CategoryID != nil || required {
		raw := strings.TrimSpace(deref(f.CategoryID))
		if raw == "" {
			return &ValidationError{Field: "idCategoria", Message: "idCategoria is required"}
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return &ValidationError{Field: "idCategoria", Message: "idCategoria must be a positive integer"}
		}
		p.CategoryID = id
	}

	if f.Price != nil || required {
		raw := strings.TrimSpace(deref(f.Price))
		if raw == "" {
			return &ValidationError{Field: "valorProduto", Message: "valorProduto is required"}
		}
		price, err := parsePrice(raw)
		if err != nil {
			return err
		}
		p.Price = price
	}

	return nil
}

// parsePrice parses raw as a positive price rounded to cents.
func parsePrice(raw string) (decimal.Decimal, error) {
	invalid := &ValidationError{Field: "valorProduto", Message: "valorProduto must be a positive number"}
	tooLarge := &ValidationError{Field: "valorProduto", Message: "valorProduto is too large"}

	if len(raw) > maxPriceLen {
		return decimal.Decimal{}, invalid
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, invalid
	}
	if price.IsZero() || price.IsNegative() {
		return decimal.Decimal{}, invalid
	}
	exp := int64(price.Exponent())
	if exp < -maxPriceLen {
		return decimal.Decimal{}, invalid
	}
	if int64(price.NumDigits())+exp > maxPriceIntDigits {
		return decimal.Decimal{}, tooLarge
	}

	price = price.Round(2)
	if !price.IsPositive() {
		return decimal.Decimal{}, invalid
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, tooLarge
	}
	return price, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
