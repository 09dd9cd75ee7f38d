package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"folio/logging"
	"folio/middleware"
	"folio/models"
)

func respondError(c *gin.Context, status int, errMsg, message string, details []models.FieldViolation) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error:   errMsg,
		Message: message,
		Details: details,
	})
}

// respondBackendError logs err with request context and sends a generic
// 500. Backend error text never reaches the client.
func respondBackendError(c *gin.Context, op string, err error, errMsg, message string) {
	logging.Error().
		Err(err).
		Str("op", op).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("request_id", middleware.GetRequestID(c)).
		Msg("Backend request failed")
	_ = c.Error(err)

	respondError(c, http.StatusInternalServerError, errMsg, message, nil)
}
