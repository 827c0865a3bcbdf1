package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/tastebox/backend/internal/extraction"
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserDTO is the public view of an account
type UserDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ImportURLRequest asks the server to fetch a page and extract its recipe
type ImportURLRequest struct {
	URL   string `json:"url" binding:"required"`
	Title string `json:"title"`
	Save  bool   `json:"save"`
}

// ImportHTMLRequest carries page HTML captured by the client
type ImportHTMLRequest struct {
	HTML  string `json:"html" binding:"required"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Save  bool   `json:"save"`
}

// MirrorImageRequest asks the server to copy a remote image into object storage
type MirrorImageRequest struct {
	URL string `json:"url" binding:"required"`
}

// RecipeResponse is a stored recipe in the extraction wire format
type RecipeResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	*extraction.StructuredRecipe
}

// ImportPreview is an extracted recipe that has not been saved
type ImportPreview struct {
	Recipe    *extraction.StructuredRecipe `json:"recipe"`
	DraftID   string                       `json:"draft_id,omitempty"`
	ExpiresAt *time.Time                   `json:"expires_at,omitempty"`
}
