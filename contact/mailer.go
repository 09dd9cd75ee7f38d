package contact

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/wneessen/go-mail"

	"folio/logging"
	"folio/metrics"
	"folio/models"
)

var contactTemplate = template.Must(template.New("contact").Parse(`<h2>New Contact Form Message</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong> {{.Message}}</p>
{{if .IsSpam}}<p><em>Flagged as likely spam.</em></p>{{end}}`))

// SMTPConfig configures SMTPMailer. From defaults to Username and To to From.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Timeout  time.Duration
}

// SMTPMailer delivers contact messages over authenticated SMTP. Repeated
// transport failures open a circuit breaker so requests fail fast while
// the relay host is down.
type SMTPMailer struct {
	cfg  SMTPConfig
	cb   *gobreaker.CircuitBreaker[string]
	send func(ctx context.Context, msg *mail.Msg) error
}

const smtpBreakerName = "smtp"

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.To == "" {
		cfg.To = cfg.From
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return newSMTPMailer(cfg, func(ctx context.Context, msg *mail.Msg) error {
		return client.DialAndSendWithContext(ctx, msg)
	}), nil
}

func newSMTPMailer(cfg SMTPConfig, send func(context.Context, *mail.Msg) error) *SMTPMailer {
	metrics.CircuitBreakerState.WithLabelValues(smtpBreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        smtpBreakerName,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &SMTPMailer{cfg: cfg, cb: cb, send: send}
}

func (s *SMTPMailer) Send(ctx context.Context, m *models.ContactMessage) (string, error) {
	msg, err := s.buildMessage(m)
	if err != nil {
		return "", err
	}

	id, err := s.cb.Execute(func() (string, error) {
		if err := s.send(ctx, msg); err != nil {
			return "", err
		}
		return messageID(msg), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(smtpBreakerName, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(smtpBreakerName, "failure").Inc()
		}
		return "", err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(smtpBreakerName, "success").Inc()
	return id, nil
}

func (s *SMTPMailer) buildMessage(m *models.ContactMessage) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.cfg.From, err)
	}
	if err := msg.To(s.cfg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", s.cfg.To, err)
	}
	if err := msg.ReplyTo(m.Email); err != nil {
		return nil, fmt.Errorf("invalid reply-to %q: %w", m.Email, err)
	}

	subject := m.Subject
	if m.IsSpam {
		subject = "[SPAM] " + subject
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetMessageID()

	if err := msg.SetBodyHTMLTemplate(contactTemplate, m); err != nil {
		return nil, fmt.Errorf("failed to render message body: %w", err)
	}
	msg.AddAlternativeString(mail.TypeTextPlain, plainBody(m))

	return msg, nil
}

func messageID(msg *mail.Msg) string {
	if ids := msg.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
		return strings.Trim(ids[0], "<>")
	}
	return ""
}

func plainBody(m *models.ContactMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", m.Name)
	fmt.Fprintf(&b, "Email: %s\n", m.Email)
	fmt.Fprintf(&b, "Subject: %s\n\n", m.Subject)
	b.WriteString(m.Message)
	return b.String()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// LogMailer logs messages instead of sending them. Used when no SMTP
// credentials are configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m *models.ContactMessage) (string, error) {
	id := "log-" + uuid.NewString()
	logging.Info().
		Str("message_id", id).
		Str("from", m.Email).
		Str("subject", m.Subject).
		Int("length", len(m.Message)).
		Bool("spam", m.IsSpam).
		Msg("Contact message logged (SMTP disabled)")
	return id, nil
}
