package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/tastebox/backend/internal/types"
)

type stubValidator struct {
	userID uuid.UUID
}

func (s stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return types.NewTokenClaims(s.userID, "ana@example.com", time.Hour), nil
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	router := gin.New()
	router.GET("/me", AuthMiddleware(stubValidator{userID: userID}), func(c *gin.Context) {
		id, ok := UserID(c)
		assert.True(t, ok)
		c.String(http.StatusOK, id.String())
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "should reject a missing header", header: "", status: http.StatusUnauthorized},
		{name: "should reject a malformed header", header: "Token good", status: http.StatusUnauthorized},
		{name: "should reject an invalid token", header: "Bearer bad", status: http.StatusUnauthorized},
		{name: "should accept a valid token", header: "Bearer good", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String(), rr.Body.String())
			}
		})
	}
}

func TestUserIDMissing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := UserID(c)
	assert.False(t, ok)
}
