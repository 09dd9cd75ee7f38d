package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"folio/logging"
	"folio/models"
)

// Recovery turns a panic into a JSON 500 without leaking its value.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logging.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", GetRequestID(c)).
			Msg("Recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   "Internal server error",
		})
	})
}
