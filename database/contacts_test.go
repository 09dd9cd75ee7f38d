package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/models"
)

func newContact(name string, spam bool) *models.ContactMessage {
	m := &models.ContactMessage{
		Name:      name,
		Email:     "visitor@example.com",
		Subject:   models.DefaultContactSubject,
		Message:   "Hello, I would like to talk about a project.",
		IPAddress: "203.0.113.7",
		UserAgent: "go-test",
	}
	if spam {
		m.MarkAsSpam()
	}
	return m
}

func TestSaveContact(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)

	ctx := context.Background()
	m := newContact("Jane", false)
	require.NoError(t, db.SaveContact(ctx, m))

	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, models.ContactStatusNew, m.Status)
	assert.Equal(t, models.DefaultContactSource, m.Source)

	require.NoError(t, db.SetContactMessageID(ctx, m.ID, "msg-123"))

	stored, err := db.GetContact(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", stored.Name)
	assert.Equal(t, "msg-123", stored.MessageID)
	assert.Equal(t, "203.0.113.7", stored.IPAddress)
}

func TestGetContact_NotFound(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)

	_, err := db.GetContact(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.SetContactMessageID(context.Background(), uuid.New(), "msg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListContacts(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)

	ctx := context.Background()
	require.NoError(t, db.SaveContact(ctx, newContact("First", false)))
	require.NoError(t, db.SaveContact(ctx, newContact("Second", true)))
	require.NoError(t, db.SaveContact(ctx, newContact("Third", false)))

	all, total, err := db.ListContacts(ctx, models.ContactListOptions{Status: "all", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	spam, total, err := db.ListContacts(ctx, models.ContactListOptions{Status: models.ContactStatusSpam, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, spam, 1)
	assert.True(t, spam[0].IsSpam)

	page, total, err := db.ListContacts(ctx, models.ContactListOptions{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Equal(t, int64(3), total)
}

func TestUpdateContactStatus(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)

	ctx := context.Background()
	m := newContact("Jane", false)
	require.NoError(t, db.SaveContact(ctx, m))

	now := time.Now().UTC().Truncate(time.Microsecond)
	updated, err := db.UpdateContactStatus(ctx, m.ID, models.ContactStatusReplied, now)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusReplied, updated.Status)
	require.NotNil(t, updated.RepliedAt)

	stored, err := db.GetContact(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusReplied, stored.Status)
	require.NotNil(t, stored.ReadAt)
	assert.True(t, now.Equal(*stored.RepliedAt))

	_, err = db.UpdateContactStatus(ctx, m.ID, models.ContactStatusRead, now)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = db.UpdateContactStatus(ctx, uuid.New(), models.ContactStatusRead, now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateContactStatus_UnflagSpam(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)

	ctx := context.Background()
	m := newContact("Jane", true)
	require.NoError(t, db.SaveContact(ctx, m))

	_, err := db.UpdateContactStatus(ctx, m.ID, models.ContactStatusRead, time.Now().UTC())
	require.NoError(t, err)

	stored, err := db.GetContact(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusRead, stored.Status)
	assert.False(t, stored.IsSpam)
}
