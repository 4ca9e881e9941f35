package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trujobs-api/internal/delivery/http/response"
	"trujobs-api/pkg/apperror"
	"trujobs-api/pkg/logger"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed",
					"path", c.FullPath(),
					"request_id", c.GetString(response.RequestIDKey),
					"status", appErr.Code,
					"error", appErr.Err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// never expose internal error details to clients
		logger.Log.Error("unhandled error",
			"path", c.FullPath(),
			"request_id", c.GetString(response.RequestIDKey),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
