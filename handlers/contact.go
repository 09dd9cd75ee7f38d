package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"folio/contact"
	"folio/logging"
	"folio/models"
	"folio/validation"
)

// ContactSubmitter relays contact form submissions.
type ContactSubmitter interface {
	Submit(ctx context.Context, sub contact.Submission) (contact.Result, error)
}

func SubmitContact(relay ContactSubmitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logging.Debug().Err(err).Msg("Bind error")
			respondError(c, http.StatusBadRequest, "Invalid request body", "Expected a JSON object", nil)
			return
		}

		result, err := relay.Submit(c.Request.Context(), contact.Submission{
			ContactRequest: req,
			IPAddress:      c.ClientIP(),
			UserAgent:      c.Request.UserAgent(),
		})
		if err != nil {
			if _, ok := validation.AsError(err); ok {
				respondValidationError(c, "Validation failed", err)
				return
			}
			if contact.IsDeliveryError(err) {
				respondBackendError(c, "send_contact", err, "Failed to send email", "")
				return
			}
			respondBackendError(c, "send_contact", err, "Internal server error", "")
			return
		}

		c.JSON(http.StatusOK, models.ContactResponse{
			Success:   true,
			Message:   "Email sent successfully!",
			MessageID: result.MessageID,
		})
	}
}
