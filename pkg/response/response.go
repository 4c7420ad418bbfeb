package response

import (
	"log"
	"net/http"

	"anoa.com/communityforum/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// Envelope is the wire format every endpoint returns.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK writes a success envelope with the given status.
func OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error maps the error to its status class and writes a failure envelope.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, Envelope{
		Success: false,
		Message: err.Error(),
	})
}

// Abort writes a failure envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	c.Abort()
	Error(c, err)
}
