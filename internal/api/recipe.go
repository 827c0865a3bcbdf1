package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastebox/backend/internal/extraction"
	"github.com/tastebox/backend/internal/middleware"
	"github.com/tastebox/backend/internal/models"
	"github.com/tastebox/backend/internal/service"
	"github.com/tastebox/backend/internal/types"
)

const maxRecipeBodyBytes = 1 << 20

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

type RecipeHandler struct {
	recipeService service.IRecipeService
	exporter      service.IRecipeExporter
}

func NewRecipeHandler(recipeService service.IRecipeService, exporter service.IRecipeExporter) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		exporter:      exporter,
	}
}

// RegisterRoutes expects router to already require authentication.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.CreateRecipe)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.GET("/:id/similar", h.SimilarRecipes)
		recipes.GET("/:id/pdf", h.ExportPDF)
	}
}

func toResponse(r *models.Recipe) types.RecipeResponse {
	return types.RecipeResponse{
		ID:               r.ID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		StructuredRecipe: r.ToStructured(),
	}
}

func toResponses(recipes []*models.Recipe) []types.RecipeResponse {
	out := make([]types.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, toResponse(r))
	}
	return out
}

// currentUser reads the authenticated user and aborts with 401 when absent.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	}
	return userID, ok
}

func recipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(badRequest("invalid recipe id"))
		return uuid.Nil, false
	}
	return id, true
}

// bindRecipe runs a submitted recipe through the same validation and
// normalization as extracted recipes.
func bindRecipe(c *gin.Context) (*extraction.StructuredRecipe, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRecipeBodyBytes))
	if err != nil {
		_ = c.Error(badRequest("failed to read request body"))
		return nil, false
	}
	recipe, err := extraction.Validate(string(body))
	if err != nil {
		_ = c.Error(badRequest("invalid recipe: request body must be a recipe JSON object"))
		return nil, false
	}
	return extraction.Normalize(recipe), true
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), userID, service.RecipeFilter{
		Query:      c.Query("q"),
		RecipeType: c.Query("type"),
		Tag:        c.Query("tag"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": toResponses(recipes),
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sr, ok := bindRecipe(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), models.NewRecipeFromStructured(userID, sr))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}
	sr, ok := bindRecipe(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, id, sr)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	recipes, err := h.recipeService.SimilarRecipes(c.Request.Context(), userID, id, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": toResponses(recipes),
	})
}

func (h *RecipeHandler) ExportPDF(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.WritePDF(&buf, recipe.ToStructured()); err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, pdfFilename(recipe.Title)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func pdfFilename(title string) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if name == "" {
		return "receta"
	}
	return name
}
