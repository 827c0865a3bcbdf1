package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorClassifier maps a handler error to a status code and a client-facing message.
type ErrorClassifier func(err error) (status int, message string)

// ErrorHandler writes errors attached with c.Error as JSON and turns panics into
// 500 responses. Handlers that already wrote a response are left alone.
func ErrorHandler(classify ErrorClassifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[ErrorHandler] Panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
				}
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, message := classify(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[ErrorHandler] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(status, ErrorResponse{Error: message})
	}
}
