package response

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"trujobs-api/internal/domain"
)

// RequestIDKey is the gin context key set by middleware.RequestID.
const RequestIDKey = string(domain.KeyRequestID)

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Abort sends an error response and stops the handler chain.
func Abort(c *gin.Context, code int, message string) {
	Error(c, code, message, nil)
	c.Abort()
}

// Relay wraps an upstream JSON body, unmodified, in the envelope with the upstream status.
func Relay(c *gin.Context, code int, message string, body json.RawMessage) {
	c.JSON(code, Response{
		Success:   code >= 200 && code < 300,
		Message:   message,
		Data:      body,
		RequestID: c.GetString(RequestIDKey),
	})
}
