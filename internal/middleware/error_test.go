package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var errTeapot = errors.New("teapot")

func classifyForTest(err error) (int, string) {
	if errors.Is(err, errTeapot) {
		return http.StatusTeapot, "short and stout"
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(classifyForTest))
	router.GET("/teapot", func(c *gin.Context) { _ = c.Error(errTeapot) })
	router.GET("/boom", func(c *gin.Context) { panic("boom") })
	router.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{"error": "custom"})
		_ = c.Error(errTeapot)
	})

	t.Run("should classify attached errors", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/teapot", nil))
		assert.Equal(t, http.StatusTeapot, rr.Code)
		assert.JSONEq(t, `{"error":"short and stout"}`, rr.Body.String())
	})

	t.Run("should turn panics into 500", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
	})

	t.Run("should keep responses already written", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/written", nil))
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"error":"custom"}`, rr.Body.String())
	})
}
