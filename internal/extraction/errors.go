package extraction

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRecipeFound is returned when the model reports that the source holds no recipe.
var ErrNoRecipeFound = errors.New("no recipe found in source content")

// FetchError is returned once every fetch strategy for a URL has failed.
type FetchError struct {
	URL      string
	Attempts []FetchAttempt
	Err      error
}

func (e *FetchError) Error() string {
	var profiles []string
	for _, a := range e.Attempts {
		profiles = append(profiles, a.Profile)
	}
	return fmt.Sprintf("failed to fetch %s after %d attempts [%s]: %v",
		e.URL, len(e.Attempts), strings.Join(profiles, ", "), e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is returned when the model output is not a JSON object.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed extraction response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// LLMError is returned when the completion request fails or yields no content.
type LLMError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *LLMError) Error() string {
	if e.StatusCode != 0 && e.Err != nil {
		return fmt.Sprintf("llm request failed with status %d: %s: %v", e.StatusCode, e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm request failed with status %d: %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("llm request failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("llm request failed: %s", e.Message)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}
