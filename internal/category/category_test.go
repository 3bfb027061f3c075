package category

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogo/service/internal/response"
)

func newHandler(t *testing.T) (*Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewHandler(NewService(NewRepository(mock))), mock
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestCreate(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectQuery("INSERT INTO categoria").
		WithArgs("Periféricos").
		WillReturnRows(pgxmock.NewRows([]string{"id_categoria", "descricao_categoria"}).
			AddRow(int64(7), "Periféricos"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/categorias",
		strings.NewReader(`{"descricaoCategoria":"  Periféricos "}`))
	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, map[string]any{"idCategoria": float64(7), "descricaoCategoria": "Periféricos"}, env.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Validation(t *testing.T) {
	for name, body := range map[string]string{
		"malformed json":      `{"descricaoCategoria":`,
		"missing description": `{}`,
		"blank description":   `{"descricaoCategoria":"   "}`,
	} {
		t.Run(name, func(t *testing.T) {
			h, mock := newHandler(t)

			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/categorias", strings.NewReader(body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreate_StorageError(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectQuery("INSERT INTO categoria").
		WithArgs("Cabos").
		WillReturnError(errors.New("connection refused"))

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/categorias",
		strings.NewReader(`{"descricaoCategoria":"Cabos"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to create category", decode(t, rec).Error)
}

func TestList(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectQuery("SELECT id_categoria, descricao_categoria").
		WillReturnRows(pgxmock.NewRows([]string{"id_categoria", "descricao_categoria"}).
			AddRow(int64(1), "Periféricos").
			AddRow(int64(2), "Monitores"))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/categorias", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := decode(t, rec).Data.([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_EmptyIsArray(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectQuery("SELECT id_categoria, descricao_categoria").
		WillReturnRows(pgxmock.NewRows([]string{"id_categoria", "descricao_categoria"}))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/categorias", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}
