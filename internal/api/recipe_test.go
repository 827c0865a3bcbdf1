package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebox/backend/internal/extraction"
	"github.com/tastebox/backend/internal/types"
)

func TestRecipeRoutes(t *testing.T) {
	env := setupTestRouter(t, false)
	token := env.registerUser(t, "cook@example.com")

	t.Run("should require authentication", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/recipes", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var created types.RecipeResponse
	t.Run("should create a recipe from the extraction format", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/recipes", token, sampleRecipe("  Tortilla de patatas  "))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		created = decode[types.RecipeResponse](t, w)
		assert.NotEqual(t, uuid.Nil, created.ID)
		require.NotNil(t, created.StructuredRecipe)
		assert.Equal(t, "Tortilla de patatas", created.Title)
		assert.Len(t, created.Ingredients, 2)
		assert.Equal(t, 1, created.Ingredients[0].Order)
		assert.Len(t, created.Instructions, 2)
	})

	t.Run("should fill defaults for sparse recipes", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/recipes", token, `{"title":"Gazpacho","prepTime":"15 min"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[types.RecipeResponse](t, w)
		assert.Equal(t, 15, resp.PrepTime)
		assert.Equal(t, "Medio", resp.Difficulty)
		assert.Len(t, resp.Ingredients, 1)
		assert.Len(t, resp.Instructions, 1)
	})

	t.Run("should reject a body that is not a recipe object", func(t *testing.T) {
		for _, body := range []string{"not json", "[1,2]", `{"error": true}`} {
			w := env.do(t, http.MethodPost, "/api/v1/recipes", token, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})

	t.Run("should get a recipe by id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, recipePath(created.ID, ""), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created.ID, decode[types.RecipeResponse](t, w).ID)
	})

	t.Run("should reject a malformed id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/recipes/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should hide recipes owned by other users", func(t *testing.T) {
		other := env.registerUser(t, "other@example.com")
		w := env.do(t, http.MethodGet, recipePath(created.ID, ""), other, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/recipes", other, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[map[string][]types.RecipeResponse](t, w)["recipes"])
	})

	t.Run("should list and filter recipes", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/recipes", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[map[string][]types.RecipeResponse](t, w)["recipes"], 2)

		w = env.do(t, http.MethodGet, "/api/v1/recipes?q=tortilla", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		recipes := decode[map[string][]types.RecipeResponse](t, w)["recipes"]
		require.Len(t, recipes, 1)
		assert.Equal(t, created.ID, recipes[0].ID)

		w = env.do(t, http.MethodGet, "/api/v1/recipes?tag=espa%C3%B1ola", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[map[string][]types.RecipeResponse](t, w)["recipes"], 1)
	})

	t.Run("should update a recipe", func(t *testing.T) {
		updated := sampleRecipe("Tortilla con cebolla")
		updated.Ingredients = append(updated.Ingredients, extraction.Ingredient{Name: "Cebolla", Amount: "1"})
		w := env.do(t, http.MethodPut, recipePath(created.ID, ""), token, updated)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[types.RecipeResponse](t, w)
		assert.Equal(t, "Tortilla con cebolla", resp.Title)
		assert.Len(t, resp.Ingredients, 3)
	})

	t.Run("should list similar recipes", func(t *testing.T) {
		w := env.do(t, http.MethodGet, recipePath(created.ID, "/similar"), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		for _, r := range decode[map[string][]types.RecipeResponse](t, w)["recipes"] {
			assert.NotEqual(t, created.ID, r.ID)
		}
	})

	t.Run("should export a recipe as pdf", func(t *testing.T) {
		w := env.do(t, http.MethodGet, recipePath(created.ID, "/pdf"), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="tortilla-con-cebolla.pdf"`)
		assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
	})

	t.Run("should delete a recipe", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, recipePath(created.ID, ""), token, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = env.do(t, http.MethodGet, recipePath(created.ID, ""), token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type failingExporter struct{}

func (failingExporter) WritePDF(w io.Writer, _ *extraction.StructuredRecipe) error {
	_, _ = w.Write([]byte("%PDF-1.3 partial"))
	return errors.New("font not found")
}

func TestExportPDF_RenderFailure(t *testing.T) {
	env := setupTestRouter(t, false, func(deps *Dependencies) {
		deps.Exporter = failingExporter{}
	})
	token := env.registerUser(t, "printer@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/recipes", token, sampleRecipe("Croquetas"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[types.RecipeResponse](t, w)

	w = env.do(t, http.MethodGet, recipePath(created.ID, "/pdf"), token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.NotContains(t, w.Body.String(), "%PDF")
}

func TestRecipeRoutes_SourceURLRoundTrip(t *testing.T) {
	env := setupTestRouter(t, false)
	token := env.registerUser(t, "importer@example.com")

	imported := sampleRecipe("Tarta de manzana")
	imported.SourceURL = "https://example.com/tarta"
	w := env.do(t, http.MethodPost, "/api/v1/recipes", token, imported)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[types.RecipeResponse](t, w)
	assert.Equal(t, "https://example.com/tarta", created.SourceURL)

	t.Run("should keep the source url when the fetched recipe is sent back", func(t *testing.T) {
		w := env.do(t, http.MethodGet, recipePath(created.ID, ""), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		fetched := decode[types.RecipeResponse](t, w)

		edited := fetched.StructuredRecipe
		edited.Title = "Tarta de manzana casera"
		w = env.do(t, http.MethodPut, recipePath(created.ID, ""), token, edited)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[types.RecipeResponse](t, w)
		assert.Equal(t, "Tarta de manzana casera", resp.Title)
		assert.Equal(t, "https://example.com/tarta", resp.SourceURL)
	})

	t.Run("should keep the source url when the body omits it", func(t *testing.T) {
		w := env.do(t, http.MethodPut, recipePath(created.ID, ""), token, sampleRecipe("Tarta de manzana y canela"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "https://example.com/tarta", decode[types.RecipeResponse](t, w).SourceURL)
	})
}

func TestHealthCheck(t *testing.T) {
	env := setupTestRouter(t, false)

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := env.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", decode[gin.H](t, w)["status"])
	}
}

func TestPDFFilename(t *testing.T) {
	assert.Equal(t, "pollo-al-ajillo", pdfFilename("Pollo al Ajillo!"))
	assert.Equal(t, "receta", pdfFilename("¡¿?!"))
}
