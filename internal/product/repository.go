// Package product manages the product catalog: persistence of product rows
// and the write flows that keep each row consistent with its image file.
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/catalogo/service/internal/db"
)

// Product is a catalog entry. ImageRef is the stored image name, nil when
// the product has no image.
type Product struct {
	ID         int64           `json:"idProduto"     example:"12"`
	CategoryID int64           `json:"idCategoria"   example:"1"`
	Name       string          `json:"nomeProduto"   example:"Teclado Mecânico"`
	Price      decimal.Decimal `json:"valorProduto"  example:"249.90" swaggertype:"string"`
	ImageRef   *string         `json:"vinculoImagem" example:"0b6f4a1e-1f7e-4d8a-9d2a-3c1f1b2e4a5d.png"`
}

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrUnknownCategory is returned when idCategoria references no category.
var ErrUnknownCategory = errors.New("category does not exist")

// Store is the persistence contract the write coordinator depends on.
type Store interface {
	Create(ctx context.Context, p *Product) error
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}

const productColumns = `id_produto, id_categoria, nome_produto, valor_produto, vinculo_imagem`

// Repository handles all product database operations.
type Repository struct {
	db db.DBTX
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db db.DBTX) *Repository {
	return &Repository{db: db}
}

// Create inserts p and sets its generated ID.
func (r *Repository) Create(ctx context.Context, p *Product) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO produtos (id_categoria, nome_produto, valor_produto, vinculo_imagem)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id_produto`,
		p.CategoryID, p.Name, p.Price, p.ImageRef,
	).Scan(&p.ID)
	if err != nil {
		return classify("insert product", err)
	}
	return nil
}

// List returns every product ordered by id.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM produtos ORDER BY id_produto`,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		var p Product
		err := scanProduct(row, &p)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	return products, nil
}

// GetByID fetches a product by its id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	p := &Product{}
	err := scanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM produtos WHERE id_produto = $1`,
		id,
	), p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return p, nil
}

// Update replaces every mutable column of the row identified by p.ID. It
// returns ErrNotFound when no row was affected.
func (r *Repository) Update(ctx context.Context, p *Product) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE produtos
		 SET id_categoria = $2, nome_produto = $3, valor_produto = $4, vinculo_imagem = $5
		 WHERE id_produto = $1`,
		p.ID, p.CategoryID, p.Name, p.Price, p.ImageRef,
	)
	if err != nil {
		return classify("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row with the given id. Deleting a missing id is a no-op.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM produtos WHERE id_produto = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Price, &p.ImageRef)
}

func classify(op string, err error) error {
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnknownCategory, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
