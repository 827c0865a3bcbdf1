package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/tastebox/backend/internal/extraction"
)

// EmbeddingDimensions is the length of Recipe.Embedding.
const EmbeddingDimensions = 64

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

type Recipe struct {
	ID           uuid.UUID           `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	DeletedAt    gorm.DeletedAt      `gorm:"index" json:"-"`
	UserID       uuid.UUID           `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title        string              `gorm:"size:255;not null" json:"title"`
	Description  string              `gorm:"type:text" json:"description"`
	PrepTime     int                 `gorm:"not null;default:30" json:"prep_time"`
	CookTime     *int                `json:"cook_time,omitempty"`
	Servings     int                 `gorm:"not null;default:4" json:"servings"`
	Difficulty   string              `gorm:"size:20;not null;default:'Medio'" json:"difficulty"`
	RecipeType   string              `gorm:"size:50" json:"recipe_type,omitempty"`
	Tags         JSONBStringArray    `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	SourceURL    string              `gorm:"size:2048" json:"source_url,omitempty"`
	Images       []RecipeImage       `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	Ingredients  []RecipeIngredient  `gorm:"constraint:OnDelete:CASCADE" json:"ingredients"`
	Instructions []RecipeInstruction `gorm:"constraint:OnDelete:CASCADE" json:"instructions"`
	Embedding    *pgvector.Vector    `gorm:"type:vector(64)" json:"-"`
}

// BeforeCreate assigns an ID when the caller did not.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type RecipeImage struct {
	ID       uint      `gorm:"primarykey" json:"-"`
	RecipeID uuid.UUID `gorm:"type:varchar(36);not null;index" json:"-"`
	URL      string    `gorm:"size:2048;not null" json:"url"`
	AltText  string    `gorm:"size:255" json:"alt_text,omitempty"`
	Position int       `gorm:"not null" json:"order"`
}

type RecipeIngredient struct {
	ID       uint      `gorm:"primarykey" json:"-"`
	RecipeID uuid.UUID `gorm:"type:varchar(36);not null;index" json:"-"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Amount   string    `gorm:"size:100;not null" json:"amount"`
	Unit     string    `gorm:"size:50" json:"unit,omitempty"`
	Position int       `gorm:"not null" json:"order"`
}

type RecipeInstruction struct {
	ID          uint      `gorm:"primarykey" json:"-"`
	RecipeID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"-"`
	Step        int       `gorm:"not null" json:"step"`
	Description string    `gorm:"type:text;not null" json:"description"`
}

// NewRecipeFromStructured builds a persistable recipe owned by userID.
func NewRecipeFromStructured(userID uuid.UUID, sr *extraction.StructuredRecipe) *Recipe {
	r := &Recipe{UserID: userID}
	r.ApplyStructured(sr)
	return r
}

// ApplyStructured overwrites the recipe content with sr. Child rows are replaced.
func (r *Recipe) ApplyStructured(sr *extraction.StructuredRecipe) {
	r.Title = sr.Title
	r.Description = sr.Description
	r.PrepTime = sr.PrepTime
	r.CookTime = sr.CookTime
	r.Servings = sr.Servings
	r.Difficulty = sr.Difficulty
	r.RecipeType = sr.RecipeType
	r.Tags = JSONBStringArray(append([]string{}, sr.Tags...))
	r.SourceURL = sr.SourceURL

	r.Images = make([]RecipeImage, 0, len(sr.Images))
	for _, img := range sr.Images {
		r.Images = append(r.Images, RecipeImage{URL: img.URL, AltText: img.AltText, Position: img.Order})
	}
	r.Ingredients = make([]RecipeIngredient, 0, len(sr.Ingredients))
	for _, ing := range sr.Ingredients {
		r.Ingredients = append(r.Ingredients, RecipeIngredient{Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit, Position: ing.Order})
	}
	r.Instructions = make([]RecipeInstruction, 0, len(sr.Instructions))
	for _, ins := range sr.Instructions {
		r.Instructions = append(r.Instructions, RecipeInstruction{Step: ins.Step, Description: ins.Description})
	}
}

// ToStructured converts the stored recipe back to the extraction contract.
func (r *Recipe) ToStructured() *extraction.StructuredRecipe {
	sr := &extraction.StructuredRecipe{
		Title:        r.Title,
		Description:  r.Description,
		Images:       make([]extraction.Image, 0, len(r.Images)),
		Ingredients:  make([]extraction.Ingredient, 0, len(r.Ingredients)),
		Instructions: make([]extraction.Instruction, 0, len(r.Instructions)),
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Servings:     r.Servings,
		Difficulty:   r.Difficulty,
		RecipeType:   r.RecipeType,
		Tags:         append([]string{}, r.Tags...),
		SourceURL:    r.SourceURL,
	}
	for _, img := range r.Images {
		sr.Images = append(sr.Images, extraction.Image{URL: img.URL, AltText: img.AltText, Order: img.Position})
	}
	for _, ing := range r.Ingredients {
		sr.Ingredients = append(sr.Ingredients, extraction.Ingredient{Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit, Order: ing.Position})
	}
	for _, ins := range r.Instructions {
		sr.Instructions = append(sr.Instructions, extraction.Instruction{Step: ins.Step, Description: ins.Description})
	}
	return sr
}

// EmbeddingText is the text used to compute the recipe's similarity vector.
func (r *Recipe) EmbeddingText() string {
	text := r.Title + " " + r.Description + " " + r.RecipeType
	for _, ing := range r.Ingredients {
		text += " " + ing.Name
	}
	for _, tag := range r.Tags {
		text += " " + tag
	}
	return text
}
