package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestQueryFilter_Pages(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		total    int64
		expected int64
	}{
		{name: "empty", limit: 10, total: 0, expected: 0},
		{name: "exact fit", limit: 5, total: 10, expected: 2},
		{name: "partial last page", limit: 5, total: 11, expected: 3},
		{name: "fewer than limit", limit: 5, total: 2, expected: 1},
		{name: "limit one", limit: 1, total: 7, expected: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := QueryFilter{Limit: tt.limit}
			assert.Equal(t, tt.expected, f.Pages(tt.total))
		})
	}
}

func TestQueryFilter_CurrentPage(t *testing.T) {
	assert.Equal(t, 1, QueryFilter{Limit: 10, Offset: 0}.CurrentPage())
	assert.Equal(t, 1, QueryFilter{Limit: 10, Offset: 9}.CurrentPage())
	assert.Equal(t, 2, QueryFilter{Limit: 10, Offset: 10}.CurrentPage())
	assert.Equal(t, 4, QueryFilter{Limit: 5, Offset: 17}.CurrentPage())
}

func TestTallyStats_Empty(t *testing.T) {
	stats := TallyStats(nil, nil, 0, 0)

	assert.Equal(t, int64(0), stats.Total)
	assert.Equal(t, int64(0), stats.Featured)
	assert.NotNil(t, stats.ByType)
	assert.NotNil(t, stats.ByStatus)
	assert.Empty(t, stats.ByType)
	assert.Empty(t, stats.ByStatus)

	body, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"byType":{}`)
	assert.Contains(t, string(body), `"byStatus":{}`)
}

func TestTallyStats_SumsMatchTotal(t *testing.T) {
	types := []*string{strPtr("company"), strPtr("personal"), strPtr("personal"), strPtr("freelance")}
	statuses := []*string{strPtr("completed"), strPtr("completed"), strPtr("in_progress"), strPtr("planned")}

	stats := TallyStats(types, statuses, 1, 4)

	var typeSum, statusSum int64
	for _, n := range stats.ByType {
		typeSum += n
	}
	for _, n := range stats.ByStatus {
		statusSum += n
	}
	assert.Equal(t, stats.Total, typeSum)
	assert.Equal(t, stats.Total, statusSum)
	assert.Equal(t, int64(2), stats.ByType["personal"])
	assert.Equal(t, StatsBreakdown{Company: 1, Personal: 2, Freelance: 1, Completed: 2, InProgress: 1}, stats.Breakdown)
}

func TestTallyStats_NullCategoriesExcluded(t *testing.T) {
	types := []*string{strPtr("company"), nil}
	statuses := []*string{nil, nil}

	stats := TallyStats(types, statuses, 0, 2)

	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, map[string]int64{"company": 1}, stats.ByType)
	assert.Empty(t, stats.ByStatus)
}

func TestProject_Validate(t *testing.T) {
	p := Project{Title: "Portfolio", Description: "Personal site"}
	assert.NoError(t, p.Validate())
	assert.True(t, p.DisplayReady())

	p = Project{Title: "  ", Description: ""}
	err := p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingTitle)
	assert.ErrorIs(t, err, ErrMissingDescription)
	assert.False(t, p.DisplayReady())
}

func TestProject_PrimaryURL(t *testing.T) {
	p := Project{GithubURL: strPtr("https://github.com/x/y")}
	assert.Equal(t, "https://github.com/x/y", p.PrimaryURL())

	p.LiveURL = strPtr("https://x.dev")
	assert.Equal(t, "https://x.dev", p.PrimaryURL())

	assert.Equal(t, "", (&Project{}).PrimaryURL())
}

func TestContactMessage_Sanitize(t *testing.T) {
	m := ContactMessage{Name: "  Jane ", Email: " Jane@Example.COM ", Subject: " Hi ", Message: " body "}
	m.Sanitize()

	assert.Equal(t, "Jane", m.Name)
	assert.Equal(t, "jane@example.com", m.Email)
	assert.Equal(t, "Hi", m.Subject)
	assert.Equal(t, "body", m.Message)
}

func TestContactMessage_Transition(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name       string
		from       string
		to         string
		fromSpam   bool
		wantErr    bool
		wantStatus string
		wantSpam   bool
	}{
		{name: "new to read", from: ContactStatusNew, to: ContactStatusRead, wantStatus: ContactStatusRead},
		{name: "new to replied", from: ContactStatusNew, to: ContactStatusReplied, wantStatus: ContactStatusReplied},
		{name: "read to replied", from: ContactStatusRead, to: ContactStatusReplied, wantStatus: ContactStatusReplied},
		{name: "replied to spam", from: ContactStatusReplied, to: ContactStatusSpam, wantStatus: ContactStatusSpam, wantSpam: true},
		{name: "spam to read unflags", from: ContactStatusSpam, fromSpam: true, to: ContactStatusRead, wantStatus: ContactStatusRead},
		{name: "spam to replied unflags", from: ContactStatusSpam, fromSpam: true, to: ContactStatusReplied, wantStatus: ContactStatusReplied},
		{name: "replied to read", from: ContactStatusReplied, to: ContactStatusRead, wantErr: true},
		{name: "back to new", from: ContactStatusRead, to: ContactStatusNew, wantErr: true},
		{name: "unknown", from: ContactStatusNew, to: "archived", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ContactMessage{Status: tt.from, IsSpam: tt.fromSpam}
			err := m.Transition(tt.to, now)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, m.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, m.Status)
			assert.Equal(t, tt.wantSpam, m.IsSpam)
		})
	}
}

func TestContactMessage_MarkAsRepliedSetsReadAt(t *testing.T) {
	now := time.Now().UTC()
	m := ContactMessage{Status: ContactStatusNew}

	require.NoError(t, m.Transition(ContactStatusReplied, now))
	require.NotNil(t, m.ReadAt)
	require.NotNil(t, m.RepliedAt)
	assert.Equal(t, now, *m.RepliedAt)
}

func TestContactMessage_MarkAsSpam(t *testing.T) {
	m := ContactMessage{Status: ContactStatusNew}
	m.MarkAsSpam()

	assert.True(t, m.IsSpam)
	assert.Equal(t, ContactStatusSpam, m.Status)
}
