package api

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastebox/backend/internal/extraction"
	"github.com/tastebox/backend/internal/middleware"
	"github.com/tastebox/backend/internal/models"
	"github.com/tastebox/backend/internal/service"
	"github.com/tastebox/backend/internal/types"
)

// ImportHandler turns web pages and documents into recipes
type ImportHandler struct {
	extractor     service.IExtractor
	documents     service.IDocumentService
	recipeService service.IRecipeService
	drafts        service.IDraftService
}

// NewImportHandler creates a new import handler. drafts may be nil.
func NewImportHandler(extractor service.IExtractor, documents service.IDocumentService, recipeService service.IRecipeService, drafts service.IDraftService) *ImportHandler {
	return &ImportHandler{
		extractor:     extractor,
		documents:     documents,
		recipeService: recipeService,
		drafts:        drafts,
	}
}

// RegisterRoutes expects router to already require authentication. limiter may be nil.
func (h *ImportHandler) RegisterRoutes(router *gin.RouterGroup, limiter *middleware.RateLimiter) {
	imports := router.Group("/imports")
	{
		extract := imports.Group("", limiter.RateLimitMiddleware())
		extract.POST("/url", h.ImportURL)
		extract.POST("/html", h.ImportHTML)
		extract.POST("/document", h.ImportDocument)

		imports.GET("/drafts/:id", h.GetDraft)
		imports.POST("/drafts/:id/save", h.SaveDraft)
		imports.DELETE("/drafts/:id", h.DiscardDraft)
	}
}

func validSourceURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (h *ImportHandler) ImportURL(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ImportURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest("invalid request body: " + err.Error()))
		return
	}
	if !validSourceURL(req.URL) {
		_ = c.Error(badRequest("url must be an absolute http or https address"))
		return
	}

	log.Printf("[ImportHandler] Importing %s for user %s", req.URL, userID)
	recipe, err := h.extractor.Extract(c.Request.Context(), extraction.ExtractionRequest{
		SourceURL:      strings.TrimSpace(req.URL),
		SuggestedTitle: req.Title,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.respond(c, userID, recipe, req.Save)
}

func (h *ImportHandler) ImportHTML(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ImportHTMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest("invalid request body: " + err.Error()))
		return
	}
	if req.URL != "" && !validSourceURL(req.URL) {
		_ = c.Error(badRequest("url must be an absolute http or https address"))
		return
	}

	recipe, err := h.extractor.Extract(c.Request.Context(), extraction.ExtractionRequest{
		SourceURL:      strings.TrimSpace(req.URL),
		RawHTML:        req.HTML,
		SuggestedTitle: req.Title,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.respond(c, userID, recipe, req.Save)
}

func (h *ImportHandler) ImportDocument(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(badRequest("multipart field \"file\" is required"))
		return
	}
	f, err := file.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer f.Close()

	text, err := h.documents.ExtractText(file.Filename, f)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.extractor.ExtractFromText(c.Request.Context(), text, file.Filename)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.respond(c, userID, recipe, c.PostForm("save") == "true")
}

// respond stores the recipe when save is set, otherwise returns a preview.
func (h *ImportHandler) respond(c *gin.Context, userID uuid.UUID, recipe *extraction.StructuredRecipe, save bool) {
	ctx := c.Request.Context()
	if save {
		saved, err := h.recipeService.CreateRecipe(ctx, models.NewRecipeFromStructured(userID, recipe))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, toResponse(saved))
		return
	}

	preview := types.ImportPreview{Recipe: recipe}
	if h.drafts != nil {
		draft, err := h.drafts.SaveDraft(ctx, userID.String(), recipe)
		if err != nil {
			// The preview is still useful without a stored draft.
			log.Printf("[ImportHandler] Failed to store draft for user %s: %v", userID, err)
		} else {
			preview.DraftID = draft.ID
			preview.ExpiresAt = &draft.ExpiresAt
		}
	}
	c.JSON(http.StatusOK, preview)
}

func (h *ImportHandler) GetDraft(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.drafts == nil {
		_ = c.Error(ErrDraftsDisabled)
		return
	}

	draft, err := h.drafts.GetDraft(c.Request.Context(), userID.String(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

func (h *ImportHandler) SaveDraft(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.drafts == nil {
		_ = c.Error(ErrDraftsDisabled)
		return
	}
	ctx := c.Request.Context()

	draft, err := h.drafts.GetDraft(ctx, userID.String(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	saved, err := h.recipeService.CreateRecipe(ctx, models.NewRecipeFromStructured(userID, draft.Recipe))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.drafts.DeleteDraft(ctx, userID.String(), draft.ID); err != nil {
		log.Printf("[ImportHandler] Failed to delete saved draft %s: %v", draft.ID, err)
	}

	c.JSON(http.StatusCreated, toResponse(saved))
}

func (h *ImportHandler) DiscardDraft(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.drafts == nil {
		_ = c.Error(ErrDraftsDisabled)
		return
	}

	if err := h.drafts.DeleteDraft(c.Request.Context(), userID.String(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
