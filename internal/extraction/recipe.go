package extraction

// Difficulty levels accepted in a StructuredRecipe.
const (
	DifficultyEasy   = "Fácil"
	DifficultyMedium = "Medio"
	DifficultyHard   = "Difícil"
)

// Placeholders and defaults substituted for missing or invalid fields.
const (
	TitlePlaceholder          = "Receta sin título"
	IngredientNamePlaceholder = "Ingrediente sin nombre"
	MissingIngredientsName    = "Ingredientes no especificados"
	DefaultAmount             = "al gusto"
	InstructionPlaceholder    = "Paso sin descripción"
	MissingInstructionsText   = "Instrucciones no especificadas"
	DefaultPrepTime           = 30
	DefaultServings           = 4
	DefaultDifficulty         = DifficultyMedium
	MaxImages                 = 3
)

// ExtractionRequest describes a single import.
type ExtractionRequest struct {
	SourceURL      string
	RawHTML        string
	SuggestedTitle string
}

// Image is a recipe photo reference.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Order   int    `json:"order"`
}

type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit,omitempty"`
	Order  int    `json:"order"`
}

type Instruction struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
}

// StructuredRecipe is the validated, normalized output of the extraction pipeline.
type StructuredRecipe struct {
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Images       []Image       `json:"images"`
	Ingredients  []Ingredient  `json:"ingredients"`
	Instructions []Instruction `json:"instructions"`
	PrepTime     int           `json:"prepTime"`
	CookTime     *int          `json:"cookTime,omitempty"`
	Servings     int           `json:"servings"`
	Difficulty   string        `json:"difficulty"`
	RecipeType   string        `json:"recipeType,omitempty"`
	Tags         []string      `json:"tags"`
	SourceURL    string        `json:"sourceUrl,omitempty"`
}

// Clone returns a deep copy of r.
func (r *StructuredRecipe) Clone() *StructuredRecipe {
	if r == nil {
		return nil
	}
	out := *r
	out.Images = append(make([]Image, 0, len(r.Images)), r.Images...)
	out.Ingredients = append(make([]Ingredient, 0, len(r.Ingredients)), r.Ingredients...)
	out.Instructions = append(make([]Instruction, 0, len(r.Instructions)), r.Instructions...)
	out.Tags = append(make([]string, 0, len(r.Tags)), r.Tags...)
	if r.CookTime != nil {
		v := *r.CookTime
		out.CookTime = &v
	}
	return &out
}
