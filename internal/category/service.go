package category

import (
	"context"
	"errors"
	"strings"
)

// ErrDescriptionRequired is returned when a category has no description.
var ErrDescriptionRequired = errors.New("descricaoCategoria is required")

// Service contains business logic for categories.
type Service struct {
	repo *Repository
}

// NewService creates a new category Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new category.
func (s *Service) Create(ctx context.Context, description string) (*Category, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	return s.repo.Create(ctx, description)
}

// List returns all categories, never nil.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []Category{}
	}
	return categories, nil
}
