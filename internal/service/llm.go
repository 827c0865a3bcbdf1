package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tastebox/backend/internal/extraction"
)

const (
	defaultLLMAPIURL    = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel     = "gpt-4o-mini"
	defaultLLMMaxTokens = 4096
	defaultLLMTimeout   = 60 * time.Second
	llmTemperature      = 0.1
	maxLoggedErrorBody  = 512
)

// LLMConfig configures the extraction client.
// ReasoningEffort is sent only when set; such requests carry
// max_completion_tokens and no temperature.
type LLMConfig struct {
	APIKey          string
	APIURL          string
	Model           string
	MaxTokens       int
	Timeout         time.Duration
	ReasoningEffort string
}

// LLMService sends extraction prompts to an OpenAI-compatible chat completions API
type LLMService struct {
	apiKey    string
	apiURL    string
	model     string
	maxTokens int
	effort    string
	client    *http.Client
}

// NewLLMService creates a new LLMService instance. An empty APIKey falls back to
// LLM_API_KEY_FILE.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKeyFile := os.Getenv("LLM_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("LLM_API_KEY or LLM_API_KEY_FILE must be set")
		}

		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}

		apiKey = strings.TrimSpace(string(apiKeyBytes))
		if apiKey == "" {
			return nil, fmt.Errorf("API key file is empty")
		}
	}

	s := &LLMService{
		apiKey:    apiKey,
		apiURL:    cfg.APIURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		effort:    strings.TrimSpace(cfg.ReasoningEffort),
		client:    &http.Client{Timeout: cfg.Timeout},
	}
	if s.apiURL == "" {
		s.apiURL = defaultLLMAPIURL
	}
	if s.model == "" {
		s.model = defaultLLMModel
	}
	if s.maxTokens <= 0 {
		s.maxTokens = defaultLLMMaxTokens
	}
	if s.client.Timeout <= 0 {
		s.client.Timeout = defaultLLMTimeout
	}
	return s, nil
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat completions request
type Request struct {
	Model               string            `json:"model"`
	Messages            []Message         `json:"messages"`
	ResponseFormat      map[string]string `json:"response_format"`
	MaxTokens           int               `json:"max_tokens,omitempty"`
	MaxCompletionTokens int               `json:"max_completion_tokens,omitempty"`
	Temperature         *float64          `json:"temperature,omitempty"`
	ReasoningEffort     string            `json:"reasoning_effort,omitempty"`
}

// Usage is the token accounting returned with a completion
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// Complete sends one extraction request and returns the raw completion text.
// There is no retry; failures are reported as *extraction.LLMError.
func (s *LLMService) Complete(ctx context.Context, system, prompt string) (string, error) {
	reqBody := Request{
		Model: s.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{
			"type": "json_object",
		},
	}
	if s.effort != "" {
		reqBody.ReasoningEffort = s.effort
		reqBody.MaxCompletionTokens = s.maxTokens
	} else {
		temperature := llmTemperature
		reqBody.Temperature = &temperature
		reqBody.MaxTokens = s.maxTokens
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &extraction.LLMError{Message: "failed to marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &extraction.LLMError{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", &extraction.LLMError{Message: "failed to send request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &extraction.LLMError{StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[LLMService] API request failed with status %d: %s", resp.StatusCode, truncate(string(body), maxLoggedErrorBody))
		return "", &extraction.LLMError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("API request failed with status %d", resp.StatusCode),
		}
	}

	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &extraction.LLMError{StatusCode: resp.StatusCode, Message: "failed to decode response", Err: err}
	}

	if len(result.Choices) == 0 {
		return "", &extraction.LLMError{StatusCode: resp.StatusCode, Message: "no choices in response", Err: errors.New("empty completion")}
	}
	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", &extraction.LLMError{StatusCode: resp.StatusCode, Message: "empty completion", Err: errors.New("empty completion")}
	}

	if result.Usage != nil {
		log.Printf("[LLMService] model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d finish=%s elapsed=%s",
			result.Model, result.Usage.PromptTokens, result.Usage.CompletionTokens, result.Usage.TotalTokens,
			result.Choices[0].FinishReason, time.Since(start).Round(time.Millisecond))
	}

	return content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
