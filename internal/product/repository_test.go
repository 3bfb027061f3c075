package product

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id_produto", "id_categoria", "nome_produto", "valor_produto", "vinculo_imagem"}

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return NewRepository(mock), mock
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	p := &Product{CategoryID: 1, Name: "Teclado", Price: decimal.RequireFromString("249.90"), ImageRef: strPtr("a.png")}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO produtos")).
		WithArgs(int64(1), "Teclado", pgxmock.AnyArg(), strPtr("a.png")).
		WillReturnRows(pgxmock.NewRows([]string{"id_produto"}).AddRow(int64(42)))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(42), p.ID)
}

func TestRepositoryCreate_UnknownCategory(t *testing.T) {
	repo, mock := newMockRepo(t)
	p := &Product{CategoryID: 9, Name: "Teclado", Price: decimal.NewFromInt(10), ImageRef: strPtr("a.png")}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO produtos")).
		WithArgs(int64(9), "Teclado", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})

	err := repo.Create(context.Background(), p)

	assert.ErrorIs(t, err, ErrUnknownCategory)
	var pgErr *pgconn.PgError
	assert.ErrorAs(t, err, &pgErr)
}

func TestRepositoryGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM produtos WHERE id_produto = $1")).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(3), int64(1), "Mouse", decimal.RequireFromString("80.50"), strPtr("m.png")))

	p, err := repo.GetByID(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, "Mouse", p.Name)
	assert.True(t, decimal.RequireFromString("80.5").Equal(p.Price))
	require.NotNil(t, p.ImageRef)
	assert.Equal(t, "m.png", *p.ImageRef)
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM produtos WHERE id_produto = $1")).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryList(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM produtos ORDER BY id_produto")).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(1), int64(1), "Mouse", decimal.NewFromInt(80), strPtr("m.png")).
			AddRow(int64(2), int64(1), "Cabo", decimal.NewFromInt(15), (*string)(nil)))

	products, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Cabo", products[1].Name)
	assert.Nil(t, products[1].ImageRef)
}

func TestRepositoryUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)
	p := &Product{ID: 5, CategoryID: 2, Name: "Monitor", Price: decimal.NewFromInt(900), ImageRef: strPtr("new.png")}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE produtos")).
		WithArgs(int64(5), int64(2), "Monitor", pgxmock.AnyArg(), strPtr("new.png")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), p))
}

func TestRepositoryUpdate_NoRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	p := &Product{ID: 5, CategoryID: 2, Name: "Monitor", Price: decimal.NewFromInt(900)}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE produtos")).
		WithArgs(int64(5), int64(2), "Monitor", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.Update(context.Background(), p), ErrNotFound)
}

func TestRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM produtos WHERE id_produto = $1")).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), 5))
}
