package extraction

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ContentFetcher retrieves the raw content behind a URL.
type ContentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*FetchResult, error)
}

// Completer sends one prompt to a language model and returns the completion text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Pipeline turns a URL, an HTML snippet or plain document text into a StructuredRecipe.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	fetcher ContentFetcher
	prompts *PromptBuilder
	llm     Completer
}

// NewPipeline wires the stages together. A nil prompt builder uses the defaults.
func NewPipeline(fetcher ContentFetcher, prompts *PromptBuilder, llm Completer) *Pipeline {
	if prompts == nil {
		prompts = NewPromptBuilder()
	}
	return &Pipeline{fetcher: fetcher, prompts: prompts, llm: llm}
}

// Extract runs classify, fetch, prompt, completion, validation and
// normalization for req. Fetch and LLM errors are returned unchanged.
func (p *Pipeline) Extract(ctx context.Context, req ExtractionRequest) (*StructuredRecipe, error) {
	start := time.Now()
	class := Classify(req.SourceURL)

	html := req.RawHTML
	pageURL := req.SourceURL
	if html == "" {
		res, err := p.fetcher.Fetch(ctx, req.SourceURL)
		if err != nil {
			log.Printf("[Pipeline] Fetch failed for %s: %v", req.SourceURL, err)
			return nil, err
		}
		html = res.Content
		if res.FinalURL != "" {
			pageURL = res.FinalURL
		}
	}

	var page *PageContent
	var err error
	if class.IsVideo {
		page, err = PrepareVideo(html, pageURL, class.Platform)
	} else {
		page, err = PrepareDocument(html, pageURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to prepare content: %w", err)
	}

	recipe, err := p.complete(ctx, PromptInput{
		Content:        page.String(),
		SourceURL:      req.SourceURL,
		SuggestedTitle: req.SuggestedTitle,
		Platform:       class.Platform,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Pipeline] Extracted %q from %s (video=%t) in %s",
		recipe.Title, req.SourceURL, class.IsVideo, time.Since(start).Round(time.Millisecond))
	return recipe, nil
}

// ExtractFromText starts at the prompt stage with already-extracted text,
// such as the contents of an uploaded document.
func (p *Pipeline) ExtractFromText(ctx context.Context, text, sourceName string) (*StructuredRecipe, error) {
	recipe, err := p.complete(ctx, PromptInput{Content: text})
	if err != nil {
		return nil, err
	}
	log.Printf("[Pipeline] Extracted %q from document %s", recipe.Title, sourceName)
	return recipe, nil
}

func (p *Pipeline) complete(ctx context.Context, in PromptInput) (*StructuredRecipe, error) {
	prompt := p.prompts.BuildFor(in)

	raw, err := p.llm.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		log.Printf("[Pipeline] LLM call failed: %v", err)
		return nil, err
	}

	recipe, err := Validate(raw)
	if err != nil {
		log.Printf("[Pipeline] Validation failed: %v", err)
		return nil, err
	}

	out := Normalize(recipe)
	out.SourceURL = in.SourceURL
	return out, nil
}
