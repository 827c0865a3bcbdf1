package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebox/backend/config"
	"github.com/tastebox/backend/internal/api"
	"github.com/tastebox/backend/internal/service"
	"github.com/tastebox/backend/internal/testhelpers"
)

func TestNewServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLiteDatabase(t)

	cfg := &config.Config{
		ServerHost:  "localhost",
		ServerPort:  "8080",
		JWTSecret:   "test-secret",
		CORSOrigins: []string{"http://app.example.com"},
	}
	srv := NewServer(cfg, api.Dependencies{
		DB:        db,
		Auth:      service.NewAuthService(db, cfg.JWTSecret),
		Recipes:   service.NewRecipeService(db, service.NewHashEmbeddingService()),
		Documents: service.NewDocumentService(),
		Images:    service.NewImageService(nil, ""),
		Exporter:  service.NewPDFExporter(),
	})
	require.NotNil(t, srv)
	assert.Equal(t, "localhost:8080", srv.http.Addr)

	t.Run("should serve the health check", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		srv.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("should answer CORS preflight for configured origins", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/recipes", nil)
		req.Header.Set("Origin", "http://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("should stop without having started", func(t *testing.T) {
		assert.NoError(t, srv.Stop(context.Background()))
	})
}
