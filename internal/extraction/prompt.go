package extraction

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// DefaultMaxContentChars bounds the source text embedded in a prompt.
const DefaultMaxContentChars = 15000

// TruncationMarker is appended to content cut at the character budget.
const TruncationMarker = "\n\n[... contenido truncado ...]"

// SystemPrompt is sent as the system message of every extraction request.
const SystemPrompt = "Eres un asistente que extrae recetas de cocina de contenido web y responde únicamente con un objeto JSON válido."

const responseSchema = `{
  "title": "string",
  "description": "string (opcional)",
  "images": [{"url": "string", "altText": "string", "order": 1}],
  "ingredients": [{"name": "string", "amount": "string", "unit": "string (opcional)"}],
  "instructions": [{"step": 1, "description": "string"}],
  "prepTime": 15,
  "cookTime": 30,
  "servings": 4,
  "difficulty": "Fácil | Medio | Difícil",
  "recipeType": "string (opcional)",
  "tags": ["string"]
}`

var baseRules = []string{
	"Conserva las cantidades y unidades exactamente como aparecen en la fuente; no conviertas ni redondees.",
	"Incluye todos los pasos de preparación, completos y en orden.",
	"Incluye como máximo 3 imágenes, usando solo URLs absolutas presentes en el contenido.",
	"Escribe todo el texto en español.",
	"prepTime y cookTime son minutos enteros; servings es un número entero.",
	`Si el contenido no contiene una receta, responde exactamente {"error": true}.`,
}

const inferStepsRule = "Si la fuente omite pasos necesarios para completar la receta, complétalos a partir de conocimientos culinarios generales."

var platformRules = map[Platform]string{
	PlatformYouTube:   "El contenido proviene de un video de YouTube: la descripción suele listar ingredientes y pasos.",
	PlatformTikTok:    "El contenido proviene de un video de TikTok: el texto es breve; deduce ingredientes y pasos del título y la descripción.",
	PlatformInstagram: "El contenido proviene de un reel o publicación de Instagram: la receta suele estar en el pie de foto.",
	PlatformFacebook:  "El contenido proviene de un video de Facebook: la receta suele estar en la descripción.",
	PlatformVimeo:     "El contenido proviene de un video de Vimeo: usa el título y la descripción.",
}

// PromptOptions toggles optional extraction behaviour for a source.
type PromptOptions struct {
	// InferMissingSteps lets the model fill gaps in the source's instructions.
	InferMissingSteps bool `yaml:"infer_missing_steps"`
}

// PromptInput is everything the builder can use for one request.
type PromptInput struct {
	Content        string
	SourceURL      string
	SuggestedTitle string
	Platform       Platform
}

// PromptBuilder assembles extraction prompts.
type PromptBuilder struct {
	MaxContentChars int
	// DomainOptions maps a domain (matching subdomains too) to its options.
	DomainOptions map[string]PromptOptions
}

// NewPromptBuilder returns a builder with the default budget and domain options.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		MaxContentChars: DefaultMaxContentChars,
		DomainOptions: map[string]PromptOptions{
			"recetasgratis.net": {InferMissingSteps: true},
		},
	}
}

// Build returns the prompt for content taken from sourceURL.
func (b *PromptBuilder) Build(content, sourceURL string) string {
	return b.BuildFor(PromptInput{Content: content, SourceURL: sourceURL})
}

// BuildFor returns the prompt for in. It never fails.
func (b *PromptBuilder) BuildFor(in PromptInput) string {
	content, truncated := truncateRunes(in.Content, b.maxChars())
	if truncated {
		content += TruncationMarker
	}

	var sb strings.Builder
	sb.WriteString("Extrae la receta del siguiente contenido y devuélvela como JSON con esta estructura:\n")
	sb.WriteString(responseSchema)
	sb.WriteString("\n\nReglas:\n")
	rules := append([]string(nil), baseRules...)
	if b.optionsFor(in.SourceURL).InferMissingSteps {
		rules = append(rules, inferStepsRule)
	}
	if r, ok := platformRules[in.Platform]; ok {
		rules = append(rules, r)
	}
	for i, r := range rules {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
	}

	if in.SuggestedTitle != "" {
		fmt.Fprintf(&sb, "\nTítulo sugerido por el usuario: %s\n", in.SuggestedTitle)
	}
	if in.SourceURL != "" {
		fmt.Fprintf(&sb, "\nFuente: %s\n", in.SourceURL)
	}
	sb.WriteString("\nContenido:\n")
	sb.WriteString(content)
	return sb.String()
}

func (b *PromptBuilder) maxChars() int {
	if b.MaxContentChars <= 0 {
		return DefaultMaxContentChars
	}
	return b.MaxContentChars
}

func (b *PromptBuilder) optionsFor(sourceURL string) PromptOptions {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return PromptOptions{}
	}
	for domain, opts := range b.DomainOptions {
		if matchDomain(u.Hostname(), []string{domain}) {
			return opts
		}
	}
	return PromptOptions{}
}

func truncateRunes(s string, max int) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}
