package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/models"
	"folio/validation"
)

type mockStore struct {
	saveFunc         func(ctx context.Context, m *models.ContactMessage) error
	setMessageIDFunc func(ctx context.Context, id uuid.UUID, messageID string) error
	saved            []*models.ContactMessage
}

func (s *mockStore) SaveContact(ctx context.Context, m *models.ContactMessage) error {
	s.saved = append(s.saved, m)
	if s.saveFunc != nil {
		return s.saveFunc(ctx, m)
	}
	m.ID = uuid.New()
	return nil
}

func (s *mockStore) SetContactMessageID(ctx context.Context, id uuid.UUID, messageID string) error {
	if s.setMessageIDFunc != nil {
		return s.setMessageIDFunc(ctx, id, messageID)
	}
	return nil
}

type mockMailer struct {
	sendFunc func(ctx context.Context, m *models.ContactMessage) (string, error)
	sent     []*models.ContactMessage
}

func (ml *mockMailer) Send(ctx context.Context, m *models.ContactMessage) (string, error) {
	ml.sent = append(ml.sent, m)
	if ml.sendFunc != nil {
		return ml.sendFunc(ctx, m)
	}
	return "msg-1", nil
}

func scenarioB() Submission {
	return Submission{ContactRequest: models.ContactRequest{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Subject: "Hello",
		Message: "This is a legitimate ten-plus character message.",
	}}
}

func TestRelay_Submit_ScenarioA(t *testing.T) {
	mailer := &mockMailer{}
	store := &mockStore{}
	relay := NewRelay(mailer, WithStore(store))

	_, err := relay.Submit(context.Background(), Submission{ContactRequest: models.ContactRequest{
		Name:    "A",
		Email:   "not-an-email",
		Message: "hi",
	}})

	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Len(t, verr.Violations, 3)
	assert.False(t, IsDeliveryError(err))
	assert.Empty(t, mailer.sent, "no delivery attempted")
	assert.Empty(t, store.saved)
}

func TestRelay_Submit_ScenarioB(t *testing.T) {
	mailer := &mockMailer{}
	store := &mockStore{}
	relay := NewRelay(mailer, WithStore(store))

	result, err := relay.Submit(context.Background(), scenarioB())
	require.NoError(t, err)

	assert.Equal(t, "msg-1", result.MessageID)
	assert.False(t, result.IsSpam)
	assert.Equal(t, models.ContactStatusNew, result.Status)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Hello", mailer.sent[0].Subject)
	require.Len(t, store.saved, 1)
	assert.Equal(t, result.ID, store.saved[0].ID)
}

func TestRelay_Submit_ScenarioE(t *testing.T) {
	mailer := &mockMailer{}
	relay := NewRelay(mailer)

	sub := scenarioB()
	sub.Message = "Links: http://a http://b http://c http://d"

	result, err := relay.Submit(context.Background(), sub)
	require.NoError(t, err)

	assert.True(t, result.IsSpam)
	assert.Equal(t, models.ContactStatusSpam, result.Status)
	assert.Contains(t, result.Signals, SignalLinks)
	require.Len(t, mailer.sent, 1, "spam is accepted and flagged, not dropped")
	assert.True(t, mailer.sent[0].IsSpam)
}

func TestRelay_Submit_SanitizesAndDefaultsSubject(t *testing.T) {
	mailer := &mockMailer{}
	relay := NewRelay(mailer)

	sub := scenarioB()
	sub.Name = "  Jane Doe  "
	sub.Email = " Jane@Example.COM "
	sub.Subject = "   "

	_, err := relay.Submit(context.Background(), sub)
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Jane Doe", mailer.sent[0].Name)
	assert.Equal(t, "jane@example.com", mailer.sent[0].Email)
	assert.Equal(t, models.DefaultContactSubject, mailer.sent[0].Subject)
}

func TestRelay_Submit_DeliveryFailure(t *testing.T) {
	transportErr := errors.New("dial tcp: connection refused")
	mailer := &mockMailer{
		sendFunc: func(ctx context.Context, m *models.ContactMessage) (string, error) {
			return "", transportErr
		},
	}
	relay := NewRelay(mailer)

	_, err := relay.Submit(context.Background(), scenarioB())

	require.Error(t, err)
	assert.True(t, IsDeliveryError(err))
	assert.ErrorIs(t, err, transportErr)
	_, isValidation := validation.AsError(err)
	assert.False(t, isValidation)
}

func TestRelay_Submit_StoreFailureStillDelivers(t *testing.T) {
	mailer := &mockMailer{}
	setCalled := false
	store := &mockStore{
		saveFunc: func(ctx context.Context, m *models.ContactMessage) error {
			return errors.New("backend unavailable")
		},
		setMessageIDFunc: func(ctx context.Context, id uuid.UUID, messageID string) error {
			setCalled = true
			return nil
		},
	}
	relay := NewRelay(mailer, WithStore(store))

	result, err := relay.Submit(context.Background(), scenarioB())
	require.NoError(t, err)

	assert.Equal(t, "msg-1", result.MessageID)
	assert.Len(t, mailer.sent, 1)
	assert.False(t, setCalled)
}

func TestRelay_Submit_RecordsMessageID(t *testing.T) {
	var recorded string
	store := &mockStore{
		setMessageIDFunc: func(ctx context.Context, id uuid.UUID, messageID string) error {
			recorded = messageID
			return nil
		},
	}
	relay := NewRelay(&mockMailer{}, WithStore(store))

	_, err := relay.Submit(context.Background(), scenarioB())
	require.NoError(t, err)
	assert.Equal(t, "msg-1", recorded)
}

func TestRelay_CustomRules(t *testing.T) {
	rules := DefaultRules()
	rules.MaxMessage = 20
	relay := NewRelay(&mockMailer{}, WithRules(rules))

	_, err := relay.Submit(context.Background(), scenarioB())
	verr, ok := validation.AsError(err)
	require.True(t, ok)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "message", verr.Violations[0].Field)
}
