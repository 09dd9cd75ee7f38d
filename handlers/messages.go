package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"folio/database"
	"folio/models"
	"folio/validation"
)

const defaultMessagesLimit = 20

// ContactAdminStore is the administrative side of contact_messages.
type ContactAdminStore interface {
	ListContacts(ctx context.Context, opts models.ContactListOptions) ([]models.ContactMessage, int64, error)
	GetContact(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error)
	UpdateContactStatus(ctx context.Context, id uuid.UUID, status string, now time.Time) (*models.ContactMessage, error)
}

func ListMessages(store ContactAdminStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := models.ContactListOptions{Limit: defaultMessagesLimit}
		if err := c.ShouldBindQuery(&opts); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid query parameters", "limit and offset must be integers", nil)
			return
		}
		if err := validation.Struct(opts); err != nil {
			respondValidationError(c, "Invalid query parameters", err)
			return
		}

		messages, total, err := store.ListContacts(c.Request.Context(), opts)
		if err != nil {
			respondBackendError(c, "list_contacts", err, "Failed to fetch messages", "")
			return
		}

		c.JSON(http.StatusOK, models.ContactListResponse{
			Success:    true,
			Data:       messages,
			Pagination: models.NewPagination(models.QueryFilter{Limit: opts.Limit, Offset: opts.Offset}, total),
		})
	}
}

func GetMessage(store ContactAdminStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid message ID", "", nil)
			return
		}

		m, err := store.GetContact(c.Request.Context(), id)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, models.ContactMessageResponse{Success: true, Data: *m})
		case errors.Is(err, database.ErrNotFound):
			respondError(c, http.StatusNotFound, "Message not found", "", nil)
		default:
			respondBackendError(c, "get_contact", err, "Failed to fetch message", "")
		}
	}
}

func UpdateMessageStatus(store ContactAdminStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid message ID", "", nil)
			return
		}

		var req models.StatusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body", "status must be one of [read, replied, spam]", nil)
			return
		}

		m, err := store.UpdateContactStatus(c.Request.Context(), id, req.Status, time.Now().UTC())
		switch {
		case err == nil:
			c.JSON(http.StatusOK, models.ContactMessageResponse{Success: true, Data: *m})
		case errors.Is(err, database.ErrNotFound):
			respondError(c, http.StatusNotFound, "Message not found", "", nil)
		case errors.Is(err, models.ErrInvalidTransition):
			respondError(c, http.StatusBadRequest, "Invalid status transition", err.Error(), nil)
		default:
			respondBackendError(c, "update_contact_status", err, "Failed to update message", "")
		}
	}
}
