// Package category manages product categories and their persistence.
package category

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/catalogo/service/internal/db"
)

// Category groups products.
type Category struct {
	ID          int64  `json:"idCategoria"        example:"1"`
	Description string `json:"descricaoCategoria" example:"Periféricos"`
}

// Repository handles all category database operations.
type Repository struct {
	db db.DBTX
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

// Create inserts a new category and returns the created record.
func (r *Repository) Create(ctx context.Context, description string) (*Category, error) {
	c := &Category{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO categoria (descricao_categoria)
		 VALUES ($1)
		 RETURNING id_categoria, descricao_categoria`,
		description,
	).Scan(&c.ID, &c.Description)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// List returns every category ordered by id.
func (r *Repository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id_categoria, descricao_categoria
		 FROM categoria ORDER BY id_categoria`,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Category, error) {
		var c Category
		err := row.Scan(&c.ID, &c.Description)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return categories, nil
}
