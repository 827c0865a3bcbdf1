package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tastebox/backend/internal/extraction"
	"github.com/tastebox/backend/internal/models"
)

const (
	defaultListLimit    = 50
	maxListLimit        = 200
	defaultSimilarLimit = 5
)

// ErrRecipeNotFound is returned when a recipe does not exist or belongs to another user.
var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeFilter narrows ListRecipes.
type RecipeFilter struct {
	Query      string
	RecipeType string
	Tag        string
	Limit      int
	Offset     int
}

// RecipeService handles recipe operations
type RecipeService struct {
	db               *gorm.DB
	embeddingService EmbeddingServiceInterface
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, embeddingService EmbeddingServiceInterface) *RecipeService {
	return &RecipeService{
		db:               db,
		embeddingService: embeddingService,
	}
}

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Instructions", func(db *gorm.DB) *gorm.DB { return db.Order("step") })
}

func (s *RecipeService) embed(recipe *models.Recipe) {
	if s.embeddingService == nil {
		return
	}
	vec, err := s.embeddingService.GenerateEmbedding(recipe.EmbeddingText())
	if err != nil {
		log.Printf("[RecipeService] Failed to embed recipe %q: %v", recipe.Title, err)
		return
	}
	recipe.Embedding = &vec
}

// CreateRecipe creates a new recipe with its images, ingredients and instructions
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	s.embed(recipe)
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	return recipe, nil
}

// GetRecipe retrieves a recipe owned by userID
func (s *RecipeService) GetRecipe(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := withChildren(s.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// UpdateRecipe replaces the recipe content with sr. Child rows are rewritten in one transaction.
// The stored source URL is kept when sr has none.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, id uuid.UUID, sr *extraction.StructuredRecipe) (*models.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}

		for _, child := range []interface{}{&models.RecipeImage{}, &models.RecipeIngredient{}, &models.RecipeInstruction{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}

		storedSource := recipe.SourceURL
		recipe.ApplyStructured(sr)
		if recipe.SourceURL == "" {
			recipe.SourceURL = storedSource
		}
		s.embed(&recipe)
		if err := tx.Omit(clause.Associations).Save(&recipe).Error; err != nil {
			return err
		}
		return createChildren(tx, &recipe)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, userID, id)
}

func createChildren(tx *gorm.DB, recipe *models.Recipe) error {
	for i := range recipe.Images {
		recipe.Images[i].RecipeID = recipe.ID
	}
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].RecipeID = recipe.ID
	}
	for i := range recipe.Instructions {
		recipe.Instructions[i].RecipeID = recipe.ID
	}
	if len(recipe.Images) > 0 {
		if err := tx.Create(&recipe.Images).Error; err != nil {
			return err
		}
	}
	if len(recipe.Ingredients) > 0 {
		if err := tx.Create(&recipe.Ingredients).Error; err != nil {
			return err
		}
	}
	if len(recipe.Instructions) > 0 {
		if err := tx.Create(&recipe.Instructions).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteRecipe deletes a recipe owned by userID together with its child rows
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// First check if the recipe exists
		var recipe models.Recipe
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		return tx.Select("Images", "Ingredients", "Instructions").Delete(&recipe).Error
	})
}

// ListRecipes lists a user's recipes, newest first
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID, filter RecipeFilter) ([]*models.Recipe, error) {
	query := withChildren(s.db.WithContext(ctx)).Where("user_id = ?", userID)

	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.RecipeType != "" {
		query = query.Where("LOWER(recipe_type) = ?", strings.ToLower(filter.RecipeType))
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = query.Where("LOWER(CAST(tags AS TEXT)) LIKE ?", `%"`+strings.ToLower(tag)+`"%`)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var recipes []*models.Recipe
	if err := query.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// SimilarRecipes returns the user's recipes closest to id by embedding distance
func (s *RecipeService) SimilarRecipes(ctx context.Context, userID, id uuid.UUID, limit int) ([]*models.Recipe, error) {
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	recipe, err := s.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if recipe.Embedding == nil {
		s.embed(recipe)
		if recipe.Embedding == nil {
			return []*models.Recipe{}, nil
		}
	}

	base := s.db.WithContext(ctx).
		Where("user_id = ? AND id <> ? AND embedding IS NOT NULL", userID, id)

	if s.db.Dialector.Name() == "postgres" {
		var recipes []*models.Recipe
		err := withChildren(base).
			Clauses(clause.OrderBy{Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{*recipe.Embedding}}}).
			Limit(limit).
			Find(&recipes).Error
		if err != nil {
			return nil, err
		}
		return recipes, nil
	}

	// Fallback to in-process cosine ranking for non-PostgreSQL databases
	var candidates []*models.Recipe
	if err := withChildren(base).Find(&candidates).Error; err != nil {
		return nil, err
	}
	return rankBySimilarity(*recipe.Embedding, candidates, limit), nil
}

func rankBySimilarity(target pgvector.Vector, candidates []*models.Recipe, limit int) []*models.Recipe {
	scores := make(map[uuid.UUID]float64, len(candidates))
	for _, c := range candidates {
		scores[c.ID] = cosineSimilarity(target.Slice(), c.Embedding.Slice())
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i].ID] > scores[candidates[j].ID]
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
