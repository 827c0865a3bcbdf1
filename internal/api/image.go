package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebox/backend/internal/service"
	"github.com/tastebox/backend/internal/types"
)

// ImageHandler proxies recipe photos that block hotlinking and mirrors them to storage
type ImageHandler struct {
	imageService service.IImageService
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService service.IImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// RegisterRoutes serves the proxy publicly since <img> tags cannot send a bearer token.
func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	images := router.Group("/images")
	{
		images.GET("/proxy", h.Proxy)
		images.POST("/mirror", requireAuth, h.Mirror)
	}
}

func (h *ImageHandler) Proxy(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		_ = c.Error(badRequest("url query parameter is required"))
		return
	}

	img, err := h.imageService.Fetch(c.Request.Context(), rawURL)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

func (h *ImageHandler) Mirror(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	var req types.MirrorImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest("invalid request body: " + err.Error()))
		return
	}

	mirrored, err := h.imageService.Mirror(c.Request.Context(), req.URL)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": mirrored})
}
