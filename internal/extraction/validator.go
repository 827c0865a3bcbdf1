package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
)

// FieldFallback records a field that was replaced by a default during validation.
type FieldFallback struct {
	Field  string
	Reason string
}

func (f FieldFallback) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Reason)
}

type fallbacks []FieldFallback

func (f *fallbacks) note(used bool, field, reason string) {
	if used {
		*f = append(*f, FieldFallback{Field: field, Reason: reason})
	}
}

// Validate parses the model output into a StructuredRecipe, substituting
// defaults for invalid fields. Fallbacks are logged, never returned as errors.
func Validate(raw string) (*StructuredRecipe, error) {
	recipe, report, err := ValidateWithReport(raw)
	if err != nil {
		return nil, err
	}
	for _, fb := range report {
		log.Printf("[Validator] Warning: fallback applied to %s", fb)
	}
	return recipe, nil
}

// ValidateWithReport is Validate that also returns every fallback applied.
func ValidateWithReport(raw string) (*StructuredRecipe, []FieldFallback, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &data); err != nil {
		return nil, nil, &MalformedResponseError{Raw: raw, Err: err}
	}
	if data == nil {
		return nil, nil, &MalformedResponseError{Raw: raw, Err: errors.New("response is not a JSON object")}
	}
	if isTruthy(data["error"]) {
		return nil, nil, ErrNoRecipeFound
	}

	var fb fallbacks
	r := &StructuredRecipe{}

	var used bool
	r.Title, used = coerceString(data["title"], TitlePlaceholder)
	fb.note(used, "title", "missing or empty")

	r.Description, used = coerceOptionalString(data["description"])
	fb.note(used, "description", "not a string")

	r.Images = validateImages(data["images"], &fb)
	r.Ingredients = validateIngredients(data["ingredients"], &fb)
	r.Instructions = validateInstructions(data["instructions"], &fb)

	r.PrepTime, used = coerceMinInt(data["prepTime"], 1, DefaultPrepTime)
	fb.note(used, "prepTime", "missing or below 1")

	r.CookTime, used = coerceOptionalInt(data["cookTime"], 0)
	fb.note(used, "cookTime", "not numeric, omitted")

	r.Servings, used = coerceMinInt(data["servings"], 1, DefaultServings)
	fb.note(used, "servings", "missing or below 1")

	r.Difficulty, used = coerceDifficulty(data["difficulty"])
	fb.note(used, "difficulty", "not one of Fácil, Medio, Difícil")

	r.RecipeType, used = coerceOptionalString(data["recipeType"])
	fb.note(used, "recipeType", "not a string, omitted")

	r.Tags, used = coerceTags(data["tags"])
	fb.note(used, "tags", "non-string entries dropped")

	r.SourceURL, used = coerceOptionalURL(data["sourceUrl"])
	fb.note(used, "sourceUrl", "not an absolute http(s) url, omitted")

	return r, fb, nil
}

func validateImages(v any, fb *fallbacks) []Image {
	images := []Image{}
	seen := make(map[string]struct{})
	if v == nil {
		return images
	}
	items, ok := v.([]any)
	if !ok {
		fb.note(true, "images", "not an array")
		return images
	}
	for i, item := range items {
		field := fmt.Sprintf("images[%d]", i)
		var img Image
		var badURL bool
		switch e := item.(type) {
		case string:
			img.URL, badURL = coerceHTTPURL(e)
			img.Order = len(images) + 1
		case map[string]any:
			img.URL, badURL = coerceHTTPURL(e["url"])
			img.AltText, _ = coerceOptionalString(e["altText"])
			var clamped bool
			img.Order, clamped = coerceImageOrder(e["order"])
			fb.note(clamped, field+".order", "clamped to 1-3")
		default:
			fb.note(true, field, "not an object")
			continue
		}
		if badURL {
			fb.note(true, field+".url", "not an absolute http(s) url, entry dropped")
			continue
		}
		key := imageKey(img.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if len(images) == MaxImages {
			fb.note(true, "images", "more than 3 images, extra dropped")
			break
		}
		images = append(images, img)
	}
	return images
}

func validateIngredients(v any, fb *fallbacks) []Ingredient {
	var ingredients []Ingredient
	items, ok := v.([]any)
	if v != nil && !ok {
		fb.note(true, "ingredients", "not an array")
	}
	for i, item := range items {
		field := fmt.Sprintf("ingredients[%d]", i)
		var ing Ingredient
		var used bool
		switch e := item.(type) {
		case string:
			ing.Name, used = coerceString(e, IngredientNamePlaceholder)
			fb.note(used, field, "empty, entry dropped")
			ing.Amount = DefaultAmount
		case map[string]any:
			ing.Name, used = coerceString(e["name"], IngredientNamePlaceholder)
			fb.note(used, field+".name", "missing, entry dropped")
			ing.Amount, used = coerceAmount(e["amount"])
			fb.note(used, field+".amount", "empty, using al gusto")
			ing.Unit, _ = coerceOptionalString(e["unit"])
		default:
			fb.note(true, field, "not an object")
			continue
		}
		if ing.Name == IngredientNamePlaceholder {
			continue
		}
		ingredients = append(ingredients, ing)
	}
	if len(ingredients) == 0 {
		fb.note(true, "ingredients", "none usable, substituted placeholder")
		ingredients = []Ingredient{{Name: MissingIngredientsName, Amount: DefaultAmount}}
	}
	return ingredients
}

func validateInstructions(v any, fb *fallbacks) []Instruction {
	var instructions []Instruction
	items, ok := v.([]any)
	if v != nil && !ok {
		fb.note(true, "instructions", "not an array")
	}
	for i, item := range items {
		field := fmt.Sprintf("instructions[%d]", i)
		var ins Instruction
		var used bool
		switch e := item.(type) {
		case string:
			ins.Step = i + 1
			ins.Description, used = coerceString(e, InstructionPlaceholder)
			fb.note(used, field, "empty step")
		case map[string]any:
			ins.Step, used = coerceMinInt(e["step"], 1, 1)
			fb.note(used, field+".step", "invalid, using 1")
			ins.Description, used = coerceString(e["description"], InstructionPlaceholder)
			fb.note(used, field+".description", "missing")
		default:
			fb.note(true, field, "not an object")
			continue
		}
		instructions = append(instructions, ins)
	}
	if len(instructions) == 0 {
		fb.note(true, "instructions", "none usable, substituted placeholder")
		instructions = []Instruction{{Step: 1, Description: MissingInstructionsText}}
	}
	return instructions
}

// stripCodeFence removes a surrounding ```json fence if the model added one.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
