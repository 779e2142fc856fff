package middleware

import (
	"errors"
	"net/http"

	"go-profile-backend/internal/delivery/http/response"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				// Kind travels alongside so clients can branch on category
				// without string-matching messages.
				response.Error(c, appErr.Code, appErr.Message, gin.H{"kind": appErr.Kind})
				if appErr.Err != nil {
					logger.Log.Warn("request failed",
						"path", c.FullPath(),
						"kind", string(appErr.Kind),
						"error", appErr.Err.Error(),
					)
				}
				return
			}

			// Never expose internal error details to clients. Log server-side
			// and send a generic message.
			logger.Log.Error("internal server error", "path", c.FullPath(), "error", err.Error())
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}
