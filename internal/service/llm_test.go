package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebox/backend/internal/extraction"
)

func newTestLLM(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(LLMConfig{APIKey: "test-api-key", APIURL: server.URL, Model: "test-model", MaxTokens: 1000})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		svc, err := NewLLMService(LLMConfig{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, defaultLLMAPIURL, svc.apiURL)
		assert.Equal(t, defaultLLMModel, svc.model)
		assert.Equal(t, defaultLLMMaxTokens, svc.maxTokens)
		assert.Equal(t, 60*time.Second, svc.client.Timeout)
	})

	t.Run("should read the key from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "llm_api_key")
		require.NoError(t, os.WriteFile(path, []byte("file-key\n"), 0o600))
		t.Setenv("LLM_API_KEY_FILE", path)

		svc, err := NewLLMService(LLMConfig{})
		require.NoError(t, err)
		assert.Equal(t, "file-key", svc.apiKey)
	})

	t.Run("should fail without API key", func(t *testing.T) {
		t.Setenv("LLM_API_KEY_FILE", "")

		svc, err := NewLLMService(LLMConfig{})
		assert.Error(t, err)
		assert.Nil(t, svc)
		assert.Contains(t, err.Error(), "LLM_API_KEY or LLM_API_KEY_FILE must be set")
	})
}

func TestLLMService_Complete(t *testing.T) {
	t.Run("should send a json-mode chat request", func(t *testing.T) {
		var got Request
		svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"model":"test-model","choices":[{"message":{"content":" {\"title\":\"Sopa\"} "},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
		})

		out, err := svc.Complete(context.Background(), "system text", "user text")
		require.NoError(t, err)
		assert.Equal(t, `{"title":"Sopa"}`, out)

		assert.Equal(t, "test-model", got.Model)
		assert.Equal(t, []Message{{Role: "system", Content: "system text"}, {Role: "user", Content: "user text"}}, got.Messages)
		assert.Equal(t, "json_object", got.ResponseFormat["type"])
		assert.Equal(t, 1000, got.MaxTokens)
		require.NotNil(t, got.Temperature)
		assert.Equal(t, 0.1, *got.Temperature)
	})

	t.Run("should omit reasoning_effort unless configured", func(t *testing.T) {
		var raw map[string]any
		svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
		})

		_, err := svc.Complete(context.Background(), "s", "p")
		require.NoError(t, err)
		assert.NotContains(t, raw, "reasoning_effort")
		assert.NotContains(t, raw, "max_completion_tokens")
		assert.Equal(t, float64(1000), raw["max_tokens"])
	})

	t.Run("should send reasoning parameters for reasoning models", func(t *testing.T) {
		var raw map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
		}))
		defer server.Close()

		svc, err := NewLLMService(LLMConfig{APIKey: "k", APIURL: server.URL, Model: "o4-mini", MaxTokens: 2000, ReasoningEffort: "low"})
		require.NoError(t, err)

		_, err = svc.Complete(context.Background(), "s", "p")
		require.NoError(t, err)
		assert.Equal(t, "o4-mini", raw["model"])
		assert.Equal(t, "low", raw["reasoning_effort"])
		assert.Equal(t, float64(2000), raw["max_completion_tokens"])
		assert.NotContains(t, raw, "max_tokens")
		assert.NotContains(t, raw, "temperature")
	})

	t.Run("should report non-200 responses", func(t *testing.T) {
		svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limited"}`))
		})

		_, err := svc.Complete(context.Background(), "s", "p")
		var llmErr *extraction.LLMError
		require.True(t, errors.As(err, &llmErr))
		assert.Equal(t, http.StatusTooManyRequests, llmErr.StatusCode)
	})

	t.Run("should report an empty completion", func(t *testing.T) {
		svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
		})

		_, err := svc.Complete(context.Background(), "s", "p")
		var llmErr *extraction.LLMError
		require.True(t, errors.As(err, &llmErr))
		assert.Contains(t, llmErr.Message, "empty")
	})

	t.Run("should report a response without choices", func(t *testing.T) {
		svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		})

		_, err := svc.Complete(context.Background(), "s", "p")
		var llmErr *extraction.LLMError
		assert.True(t, errors.As(err, &llmErr))
	})

	t.Run("should report an undecodable envelope", func(t *testing.T) {
		svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>gateway</html>`))
		})

		_, err := svc.Complete(context.Background(), "s", "p")
		var llmErr *extraction.LLMError
		assert.True(t, errors.As(err, &llmErr))
	})

	t.Run("should report transport failures", func(t *testing.T) {
		svc, err := NewLLMService(LLMConfig{APIKey: "k", APIURL: "http://127.0.0.1:1/v1/chat/completions"})
		require.NoError(t, err)

		_, err = svc.Complete(context.Background(), "s", "p")
		var llmErr *extraction.LLMError
		require.True(t, errors.As(err, &llmErr))
		assert.Zero(t, llmErr.StatusCode)
	})

	t.Run("should satisfy the pipeline completer", func(t *testing.T) {
		var _ extraction.Completer = (*LLMService)(nil)
	})
}
