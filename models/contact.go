package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact message lifecycle states.
const (
	ContactStatusNew     = "new"
	ContactStatusRead    = "read"
	ContactStatusReplied = "replied"
	ContactStatusSpam    = "spam"

	DefaultContactSubject = "New Contact Form Message"
	DefaultContactSource  = "cv_website"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// ContactMessage is a contact form submission as stored in contact_messages.
// IsSpam and Status are derived server-side and never read from the request.
type ContactMessage struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	Subject   string     `json:"subject" db:"subject"`
	Message   string     `json:"message" db:"message"`
	Status    string     `json:"status" db:"status"`
	IsSpam    bool       `json:"isSpam" db:"is_spam"`
	IPAddress string     `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent string     `json:"userAgent,omitempty" db:"user_agent"`
	Source    string     `json:"source" db:"source"`
	MessageID string     `json:"messageId,omitempty" db:"message_id"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	ReadAt    *time.Time `json:"readAt,omitempty" db:"read_at"`
	RepliedAt *time.Time `json:"repliedAt,omitempty" db:"replied_at"`
}

// ContactRequest is the JSON body of POST /api/contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactResponse is the body of a successful POST /api/contact.
type ContactResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

// ContactListOptions carries filter and pagination for the admin listing.
// Status "" or "all" returns every message.
type ContactListOptions struct {
	Status string `form:"status" validate:"omitempty,oneof=all new read replied spam"`
	Limit  int    `form:"limit" validate:"min=1,max=100"`
	Offset int    `form:"offset" validate:"min=0"`
}

// ContactListResponse is the body of GET /api/contact/messages.
type ContactListResponse struct {
	Success    bool             `json:"success"`
	Data       []ContactMessage `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// StatusUpdateRequest is the body of PATCH /api/contact/messages/:id.
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required,oneof=read replied spam"`
}

// ContactMessageResponse wraps a single message.
type ContactMessageResponse struct {
	Success bool           `json:"success"`
	Data    ContactMessage `json:"data"`
}

// Sanitize trims every field and lower-cases the email address.
func (m *ContactMessage) Sanitize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
}

func (m *ContactMessage) MarkAsRead(now time.Time) {
	m.ReadAt = &now
	m.Status = ContactStatusRead
}

func (m *ContactMessage) MarkAsReplied(now time.Time) {
	m.RepliedAt = &now
	m.Status = ContactStatusReplied
}

func (m *ContactMessage) MarkAsSpam() {
	m.IsSpam = true
	m.Status = ContactStatusSpam
}

// Transition applies an administrative status change. Messages may not
// return to "new", and a replied message can only be re-flagged as spam.
// Moving a message out of spam clears IsSpam, so status and flag agree.
func (m *ContactMessage) Transition(status string, now time.Time) error {
	switch {
	case status == ContactStatusSpam:
		m.MarkAsSpam()
	case m.Status == ContactStatusReplied && status == ContactStatusRead:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, status)
	case status == ContactStatusRead:
		m.IsSpam = false
		m.MarkAsRead(now)
	case status == ContactStatusReplied:
		m.IsSpam = false
		if m.ReadAt == nil {
			m.ReadAt = &now
		}
		m.MarkAsReplied(now)
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, status)
	}
	return nil
}
