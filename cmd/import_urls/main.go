package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tastebox/backend/config"
	"github.com/tastebox/backend/internal/database"
	"github.com/tastebox/backend/internal/extraction"
	"github.com/tastebox/backend/internal/models"
	"github.com/tastebox/backend/internal/service"
)

const (
	defaultBatchSize  = 5               // URLs imported before pausing
	defaultBatchDelay = 2 * time.Second // pause between batches to stay under origin rate limits
	perURLTimeout     = 2 * time.Minute
)

func main() {
	email := flag.String("email", "", "Email of the account that will own the imported recipes")
	file := flag.String("file", "", "File with one recipe URL per line (default stdin)")
	batchSize := flag.Int("batch", defaultBatchSize, "URLs per batch")
	delay := flag.Duration("delay", defaultBatchDelay, "Pause between batches")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var owner models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(*email))).First(&owner).Error; err != nil {
		log.Fatalf("Failed to find user %s: %v", *email, err)
	}

	extractor, err := service.NewExtractor(service.LLMConfig{
		APIKey:          cfg.LLMAPIKey,
		APIURL:          cfg.LLMAPIURL,
		Model:           cfg.LLMModel,
		MaxTokens:       cfg.LLMMaxTokens,
		ReasoningEffort: cfg.LLMReasoningEffort,
	}, cfg.FetchProfilesFile)
	if err != nil {
		log.Fatalf("Failed to create extractor: %v", err)
	}
	recipes := service.NewRecipeService(db, service.NewHashEmbeddingService())

	var input io.Reader = os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", *file, err)
		}
		defer f.Close()
		input = f
	}
	urls, err := readURLs(input)
	if err != nil {
		log.Fatalf("Failed to read URLs: %v", err)
	}
	if *batchSize < 1 {
		*batchSize = 1
	}

	imported, failed := 0, 0
	for i := 0; i < len(urls); i += *batchSize {
		batchEnd := i + *batchSize
		if batchEnd > len(urls) {
			batchEnd = len(urls)
		}
		log.Printf("Importing batch %d-%d of %d", i+1, batchEnd, len(urls))

		for _, u := range urls[i:batchEnd] {
			recipe, err := importOne(extractor, recipes, owner, u)
			if err != nil {
				failed++
				log.Printf("Failed to import %s: %v", u, describe(err))
				continue
			}
			imported++
			log.Printf("Imported %q from %s", recipe.Title, u)
		}

		// Add a small delay between batches to avoid rate limiting
		if batchEnd < len(urls) {
			time.Sleep(*delay)
		}
	}

	log.Printf("Imported %d recipes, %d failed", imported, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func importOne(extractor service.IExtractor, recipes service.IRecipeService, owner models.User, rawURL string) (*models.Recipe, error) {
	ctx, cancel := context.WithTimeout(context.Background(), perURLTimeout)
	defer cancel()

	structured, err := extractor.Extract(ctx, extraction.ExtractionRequest{SourceURL: rawURL})
	if err != nil {
		return nil, err
	}
	return recipes.CreateRecipe(ctx, models.NewRecipeFromStructured(owner.ID, structured))
}

// readURLs returns the non-empty lines of r, skipping # comments
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

func describe(err error) string {
	var fetchErr *extraction.FetchError
	switch {
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("fetch failed after %d attempts: %v", len(fetchErr.Attempts), fetchErr.Err)
	case errors.Is(err, extraction.ErrNoRecipeFound):
		return "no recipe on page"
	}
	return err.Error()
}
