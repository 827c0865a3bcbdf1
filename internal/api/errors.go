package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tastebox/backend/internal/extraction"
	"github.com/tastebox/backend/internal/service"
)

// ErrDraftsDisabled is returned by draft routes when Redis is not configured.
var ErrDraftsDisabled = errors.New("drafts are not available")

// requestError is a client mistake reported verbatim with 400.
type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

// ClassifyError maps handler errors to HTTP status codes and client messages.
func ClassifyError(err error) (int, string) {
	var (
		reqErr       *requestError
		fetchErr     *extraction.FetchError
		malformedErr *extraction.MalformedResponseError
		llmErr       *extraction.LLMError
		statusErr    *extraction.StatusError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.msg
	case errors.Is(err, extraction.ErrNoRecipeFound):
		return http.StatusNotFound, "no recipe found on this page"
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, "could not retrieve source content"
	case errors.As(err, &malformedErr):
		return http.StatusInternalServerError, "invalid extraction response"
	case errors.As(err, &llmErr):
		return http.StatusBadGateway, "recipe extraction service unavailable"
	case errors.As(err, &statusErr):
		return http.StatusBadGateway, "upstream server returned an error"
	case errors.Is(err, service.ErrRecipeNotFound):
		return http.StatusNotFound, "recipe not found"
	case errors.Is(err, service.ErrDraftNotFound):
		return http.StatusNotFound, "draft not found"
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, "an account with this email already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, service.ErrInvalidImageURL):
		return http.StatusBadRequest, "invalid image url"
	case errors.Is(err, service.ErrNotAnImage):
		return http.StatusUnprocessableEntity, "url does not point to an image"
	case errors.Is(err, service.ErrImageTooLarge), errors.Is(err, service.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge, "file too large"
	case errors.Is(err, service.ErrUnsupportedDocument):
		return http.StatusUnsupportedMediaType, "unsupported document type, use .docx, .pdf or .txt"
	case errors.Is(err, service.ErrEmptyDocument):
		return http.StatusUnprocessableEntity, "document contains no text"
	case errors.Is(err, service.ErrStorageDisabled), errors.Is(err, ErrDraftsDisabled):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	}
	return http.StatusInternalServerError, "internal server error"
}
