// Package contact screens, stores and relays contact form submissions.
package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"folio/logging"
	"folio/metrics"
	"folio/models"
)

// Store persists submissions for later review.
type Store interface {
	SaveContact(ctx context.Context, m *models.ContactMessage) error
	SetContactMessageID(ctx context.Context, id uuid.UUID, messageID string) error
}

// Mailer hands a message to the mail transport and returns its message id.
type Mailer interface {
	Send(ctx context.Context, m *models.ContactMessage) (string, error)
}

// DeliveryError means the submission was valid but the transport failed.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver contact message: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Submission is one contact form post with its request context.
type Submission struct {
	models.ContactRequest
	IPAddress string
	UserAgent string
}

// Result describes an accepted submission.
type Result struct {
	ID        uuid.UUID
	MessageID string
	IsSpam    bool
	Status    string
	Signals   []Signal
}

// Relay validates, screens and relays submissions. Spam is accepted and
// flagged rather than rejected so it stays auditable.
type Relay struct {
	store    Store
	mailer   Mailer
	detector *Detector
	rules    Rules
	now      func() time.Time
}

type RelayOption func(*Relay)

// WithStore persists every accepted submission. Without it nothing is stored.
func WithStore(s Store) RelayOption {
	return func(r *Relay) { r.store = s }
}

func WithRules(rules Rules) RelayOption {
	return func(r *Relay) { r.rules = rules }
}

func WithDetector(d *Detector) RelayOption {
	return func(r *Relay) { r.detector = d }
}

func NewRelay(mailer Mailer, opts ...RelayOption) *Relay {
	r := &Relay{
		mailer:   mailer,
		detector: NewDetector(DefaultSpamConfig()),
		rules:    DefaultRules(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prepare sanitizes and validates a submission without side effects.
func (r *Relay) Prepare(sub Submission) (*models.ContactMessage, Verdict, error) {
	m := &models.ContactMessage{
		Name:      sub.Name,
		Email:     sub.Email,
		Subject:   sub.Subject,
		Message:   sub.Message,
		IPAddress: sub.IPAddress,
		UserAgent: sub.UserAgent,
		Source:    models.DefaultContactSource,
		Status:    models.ContactStatusNew,
	}
	m.Sanitize()

	if err := Validate(m, r.rules); err != nil {
		return nil, Verdict{}, err
	}
	if m.Subject == "" {
		m.Subject = models.DefaultContactSubject
	}

	verdict := r.detector.Detect(m)
	if verdict.Spam {
		m.MarkAsSpam()
	}
	return m, verdict, nil
}

// Submit relays a submission. It returns a *ValidationError when the input
// is rejected and a *DeliveryError when the transport fails.
func (r *Relay) Submit(ctx context.Context, sub Submission) (Result, error) {
	m, verdict, err := r.Prepare(sub)
	if err != nil {
		metrics.RecordContactSubmission(metrics.OutcomeInvalid)
		return Result{}, err
	}
	m.CreatedAt = r.now().UTC()

	stored := false
	if r.store != nil {
		if err := r.store.SaveContact(ctx, m); err != nil {
			// Delivery proceeds without the audit row.
			metrics.RecordContactSubmission(metrics.OutcomeStoreFailed)
			logging.Error().Err(err).Msg("Failed to store contact message")
		} else {
			stored = true
		}
	}

	log := logging.With().
		Str("contact_id", m.ID.String()).
		Bool("spam", m.IsSpam).
		Interface("signals", verdict.Signals).
		Logger()

	messageID, err := r.mailer.Send(ctx, m)
	if err != nil {
		metrics.RecordContactSubmission(metrics.OutcomeDeliveryFailed)
		log.Error().Err(err).Msg("Contact delivery failed")
		return Result{}, &DeliveryError{Err: err}
	}
	m.MessageID = messageID

	if stored {
		if err := r.store.SetContactMessageID(ctx, m.ID, messageID); err != nil {
			log.Warn().Err(err).Msg("Failed to record contact message id")
		}
	}

	if m.IsSpam {
		metrics.RecordContactSubmission(metrics.OutcomeSpam)
		log.Warn().Msg("Contact message flagged as spam")
	} else {
		metrics.RecordContactSubmission(metrics.OutcomeDelivered)
		log.Info().Str("message_id", messageID).Msg("Contact message delivered")
	}

	return Result{
		ID:        m.ID,
		MessageID: messageID,
		IsSpam:    m.IsSpam,
		Status:    m.Status,
		Signals:   verdict.Signals,
	}, nil
}

// IsDeliveryError reports whether err is a transport failure.
func IsDeliveryError(err error) bool {
	var derr *DeliveryError
	return errors.As(err, &derr)
}
