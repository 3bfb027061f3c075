package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_PassesThroughStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK) // ignored
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/produtos", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestWrappedWriter_ImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &wrappedWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	_, err := ww.Write([]byte("{}"))

	assert.NoError(t, err)
	assert.True(t, ww.wroteHeader)
	assert.Equal(t, http.StatusOK, ww.statusCode)
	assert.Equal(t, rec, ww.Unwrap())
}
