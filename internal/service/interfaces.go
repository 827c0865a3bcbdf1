package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/tastebox/backend/internal/extraction"
	"github.com/tastebox/backend/internal/models"
	"github.com/tastebox/backend/internal/types"
)

// EmbeddingServiceInterface computes similarity vectors for recipes
type EmbeddingServiceInterface interface {
	GenerateEmbedding(text string) (pgvector.Vector, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	GetRecipe(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, id uuid.UUID, sr *extraction.StructuredRecipe) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error
	ListRecipes(ctx context.Context, userID uuid.UUID, filter RecipeFilter) ([]*models.Recipe, error)
	SimilarRecipes(ctx context.Context, userID, id uuid.UUID, limit int) ([]*models.Recipe, error)
}

// IDraftService defines the interface for extraction previews
type IDraftService interface {
	SaveDraft(ctx context.Context, userID string, recipe *extraction.StructuredRecipe) (*Draft, error)
	GetDraft(ctx context.Context, userID, id string) (*Draft, error)
	DeleteDraft(ctx context.Context, userID, id string) error
}

// IExtractor turns a source into a structured recipe
type IExtractor interface {
	Extract(ctx context.Context, req extraction.ExtractionRequest) (*extraction.StructuredRecipe, error)
	ExtractFromText(ctx context.Context, text, sourceName string) (*extraction.StructuredRecipe, error)
}

// IImageService proxies and mirrors remote recipe images
type IImageService interface {
	Fetch(ctx context.Context, rawURL string) (*RemoteImage, error)
	Mirror(ctx context.Context, rawURL string) (string, error)
}

// IRecipeExporter renders recipes as documents
type IRecipeExporter interface {
	WritePDF(w io.Writer, recipe *extraction.StructuredRecipe) error
}

// IDocumentService extracts text from uploaded documents
type IDocumentService interface {
	ExtractText(filename string, r io.Reader) (string, error)
}
