package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenera/backend/pkg/middleware"
)

func corsHandler(opts middleware.CORSOptions) http.Handler {
	return middleware.CORS(opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORSAllowsTokenHeader(t *testing.T) {
	h := corsHandler(middleware.DefaultCORSOptions())

	req := httptest.NewRequest(http.MethodOptions, "/api/cart/get", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "token")
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	h := corsHandler(middleware.CORSOptions{
		AllowedOrigins: []string{"https://shop.lumenera.io"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"token"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/product/list", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSMatchesListedOrigin(t *testing.T) {
	h := corsHandler(middleware.CORSOptions{
		AllowedOrigins: []string{"https://shop.lumenera.io"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"token"},
		MaxAge:         600,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/product/list", nil)
	req.Header.Set("Origin", "https://shop.lumenera.io")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://shop.lumenera.io", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}
