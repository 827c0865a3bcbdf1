package service

import (
	"fmt"
	"log"

	"github.com/tastebox/backend/internal/extraction"
)

// NewExtractor builds the extraction pipeline: fetch cascade, prompt builder and LLM client.
// An empty profilesFile uses the built-in fetch profiles.
func NewExtractor(llmCfg LLMConfig, profilesFile string) (*extraction.Pipeline, error) {
	profiles := extraction.DefaultProfileSet()
	if profilesFile != "" {
		loaded, err := extraction.LoadProfileSet(profilesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load fetch profiles: %w", err)
		}
		log.Printf("[Extractor] Loaded fetch profiles from %s", profilesFile)
		profiles = loaded
	}

	llm, err := NewLLMService(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM service: %w", err)
	}

	return extraction.NewPipeline(extraction.NewFetcher(profiles), extraction.NewPromptBuilder(), llm), nil
}
