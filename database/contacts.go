package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"folio/logging"
	"folio/models"
)

const contactColumns = `id, name, email, subject, message, status, is_spam,
	ip_address, user_agent, source, message_id, created_at, read_at, replied_at`

// SaveContact inserts m and fills its generated id and created_at.
func (db *DB) SaveContact(ctx context.Context, m *models.ContactMessage) error {
	if m.Status == "" {
		m.Status = models.ContactStatusNew
	}
	if m.Source == "" {
		m.Source = models.DefaultContactSource
	}

	query := `
		INSERT INTO contact_messages (name, email, subject, message, status, is_spam,
			ip_address, user_agent, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := db.Pool.QueryRow(ctx, query,
		m.Name, m.Email, m.Subject, m.Message, m.Status, m.IsSpam,
		m.IPAddress, m.UserAgent, m.Source,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return unavailable("save contact", err)
	}

	logging.Debug().Str("contact_id", m.ID.String()).Bool("spam", m.IsSpam).Msg("SaveContact")
	return nil
}

// SetContactMessageID records the transport id once delivery succeeded.
func (db *DB) SetContactMessageID(ctx context.Context, id uuid.UUID, messageID string) error {
	result, err := db.Pool.Exec(ctx,
		`UPDATE contact_messages SET message_id = $2 WHERE id = $1`, id, messageID)
	if err != nil {
		return unavailable("set contact message id", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("contact message %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListContacts returns messages newest first. Status "" or "all" lists every message.
func (db *DB) ListContacts(ctx context.Context, opts models.ContactListOptions) ([]models.ContactMessage, int64, error) {
	qb := NewQueryBuilder()
	if opts.Status != "" && opts.Status != "all" {
		qb.AddCondition(columnStatus, opts.Status)
	}

	query := fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count
		FROM contact_messages
		%s
		ORDER BY created_at DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, contactColumns, qb.WhereClause(), qb.NextArgNum(), qb.NextArgNum()+1)

	args := append(qb.Args(), opts.Limit, opts.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, unavailable("list contacts", err)
	}
	defer rows.Close()

	messages := []models.ContactMessage{}
	var total int64
	for rows.Next() {
		m, err := scanContact(rows, &total)
		if err != nil {
			return nil, 0, unavailable("scan contact", err)
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, unavailable("iterate contacts", err)
	}

	if len(messages) == 0 && opts.Offset > 0 {
		query := "SELECT COUNT(*) FROM contact_messages " + qb.WhereClause()
		if err := db.Pool.QueryRow(ctx, query, qb.Args()...).Scan(&total); err != nil {
			return nil, 0, unavailable("count contacts", err)
		}
	}

	return messages, total, nil
}

func (db *DB) GetContact(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	query := fmt.Sprintf(`SELECT %s FROM contact_messages WHERE id = $1`, contactColumns)

	m, err := scanContact(db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("contact message %s: %w", id, ErrNotFound)
		}
		return nil, unavailable("get contact", err)
	}
	return m, nil
}

// UpdateContactStatus applies an administrative status transition under a
// row lock. It returns models.ErrInvalidTransition for disallowed changes.
func (db *DB) UpdateContactStatus(ctx context.Context, id uuid.UUID, status string, now time.Time) (*models.ContactMessage, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, unavailable("begin contact update", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(`SELECT %s FROM contact_messages WHERE id = $1 FOR UPDATE`, contactColumns)
	m, err := scanContact(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("contact message %s: %w", id, ErrNotFound)
		}
		return nil, unavailable("lock contact", err)
	}

	if err := m.Transition(status, now); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE contact_messages
		SET status = $2, is_spam = $3, read_at = $4, replied_at = $5
		WHERE id = $1
	`, m.ID, m.Status, m.IsSpam, m.ReadAt, m.RepliedAt)
	if err != nil {
		return nil, unavailable("update contact", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, unavailable("commit contact update", err)
	}

	logging.Info().Str("contact_id", id.String()).Str("status", m.Status).Msg("Contact status updated")
	return m, nil
}

func scanContact(row rowScanner, extra ...interface{}) (*models.ContactMessage, error) {
	var m models.ContactMessage
	var messageID *string
	dest := []interface{}{
		&m.ID,
		&m.Name,
		&m.Email,
		&m.Subject,
		&m.Message,
		&m.Status,
		&m.IsSpam,
		&m.IPAddress,
		&m.UserAgent,
		&m.Source,
		&messageID,
		&m.CreatedAt,
		&m.ReadAt,
		&m.RepliedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if messageID != nil {
		m.MessageID = *messageID
	}
	return &m, nil
}
