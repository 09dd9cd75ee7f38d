package database

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/models"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// seedProjects inserts the fixture used by the query tests:
// 2 company, 2 personal (1 featured), 1 freelance, 1 untyped.
func seedProjects(t *testing.T, db *DB) []models.Project {
	t.Helper()

	fixtures := []models.Project{
		{Title: "Billing Platform", Description: "Payments backend in Go", ProjectType: strPtr("company"), Status: strPtr("completed"), Priority: 9, Technologies: []string{"Go", "Postgres"}},
		{Title: "Inventory Sync", Description: "Kafka based stock sync", ProjectType: strPtr("company"), Status: strPtr("in_progress"), Priority: 7},
		{Title: "Portfolio Site", Description: "This very website", ProjectType: strPtr("personal"), Status: strPtr("completed"), IsFeatured: true, Priority: 8, Technologies: []string{"React", "React"}},
		{Title: "Chess Engine", Description: "Bitboard move generator", ProjectType: strPtr("personal"), Status: strPtr("planned"), Priority: 3},
		{Title: "Shop Redesign", Description: "Storefront for a bakery", ProjectType: strPtr("freelance"), Status: strPtr("archived"), Priority: 5},
		{Title: "Scratchpad", Description: "Untyped experiments", Priority: 1},
	}

	ctx := context.Background()
	for i := range fixtures {
		require.NoError(t, db.InsertProject(ctx, &fixtures[i]))
	}
	return fixtures
}

func TestQueryProjects_Defaults(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	seedProjects(t, db)

	projects, total, err := db.QueryProjects(context.Background(), models.DefaultQueryFilter())
	require.NoError(t, err)

	assert.Equal(t, int64(6), total)
	require.Len(t, projects, 6)
	for i := 1; i < len(projects); i++ {
		assert.GreaterOrEqual(t, projects[i-1].Priority, projects[i].Priority)
	}
	assert.Equal(t, []string{"React", "React"}, projects[1].Technologies)
	assert.NotNil(t, projects[5].Technologies)
}

func TestQueryProjects_FilterConformance(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	seedProjects(t, db)

	f := models.DefaultQueryFilter()
	f.Type = strPtr("personal")
	f.Featured = boolPtr(true)

	projects, total, err := db.QueryProjects(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, projects, 1)
	assert.Equal(t, "personal", *projects[0].ProjectType)
	assert.True(t, projects[0].IsFeatured)
}

// Scenario C: type=company&limit=5&offset=0&sort=title&order=asc.
func TestQueryProjects_SortedWindow(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	seedProjects(t, db)

	f := models.QueryFilter{Type: strPtr("company"), Limit: 5, Offset: 0, Sort: "title", Order: "asc"}

	projects, total, err := db.QueryProjects(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	require.Len(t, projects, 2)
	assert.Equal(t, "Billing Platform", projects[0].Title)
	assert.Equal(t, "Inventory Sync", projects[1].Title)
	assert.Equal(t, int64(1), f.Pages(total))
	assert.Equal(t, 1, f.CurrentPage())
}

func TestQueryProjects_TotalInvariantUnderWindow(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	seedProjects(t, db)

	ctx := context.Background()
	for _, window := range []struct{ limit, offset int }{{1, 0}, {2, 2}, {4, 4}, {10, 5}, {10, 50}} {
		f := models.DefaultQueryFilter()
		f.Limit = window.limit
		f.Offset = window.offset

		projects, total, err := db.QueryProjects(ctx, f)
		require.NoError(t, err)

		assert.Equal(t, int64(6), total, "limit=%d offset=%d", window.limit, window.offset)
		assert.LessOrEqual(t, len(projects), window.limit)
	}
}

func TestQueryProjects_PagesDoNotOverlap(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	seedProjects(t, db)

	ctx := context.Background()
	seen := map[string]bool{}
	for offset := 0; offset < 6; offset += 2 {
		f := models.DefaultQueryFilter()
		f.Limit = 2
		f.Offset = offset

		projects, _, err := db.QueryProjects(ctx, f)
		require.NoError(t, err)
		for _, p := range projects {
			assert.False(t, seen[p.ID.String()], "project %s returned twice", p.Title)
			seen[p.ID.String()] = true
		}
	}
	assert.Len(t, seen, 6)
}

func TestQueryProjects_Idempotent(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	seedProjects(t, db)

	ctx := context.Background()
	f := models.DefaultQueryFilter()
	f.Sort = "created_at"

	first, firstTotal, err := db.QueryProjects(ctx, f)
	require.NoError(t, err)
	second, secondTotal, err := db.QueryProjects(ctx, f)
	require.NoError(t, err)

	assert.Equal(t, firstTotal, secondTotal)
	assert.Equal(t, first, second)
}

func TestQueryProjects_Search(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	seedProjects(t, db)

	f := models.DefaultQueryFilter()
	f.Search = strPtr("payment")

	projects, total, err := db.QueryProjects(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, projects, 1)
	assert.Equal(t, "Billing Platform", projects[0].Title)
}

func TestProjectFilter(t *testing.T) {
	f := models.DefaultQueryFilter()
	f.Type = strPtr("company")
	f.Featured = boolPtr(false)
	f.Search = strPtr("Go API")

	qb, err := projectFilter(f)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"company", false, "go:* & api:*"}, qb.Args())

	f.Search = strPtr("a b c")
	_, err = projectFilter(f)
	assert.ErrorIs(t, err, ErrInvalidSearch)
	assert.False(t, IsBackendError(err))
}

func TestProjectFilter_MultibyteSearch(t *testing.T) {
	f := models.DefaultQueryFilter()
	f.Search = strPtr(strings.Repeat("я", 150))

	qb, err := projectFilter(f)
	require.NoError(t, err)
	assert.Len(t, qb.Args(), 1)
}

func TestGetProject(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	fixtures := seedProjects(t, db)

	got, err := db.GetProject(context.Background(), fixtures[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "Portfolio Site", got.Title)
	assert.True(t, got.IsFeatured)
	assert.Equal(t, []string{"React", "React"}, got.Technologies)

	_, err = db.GetProject(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsBackendError(err))
}

func TestQueryProjects_BackendFailure(t *testing.T) {
	db := RequireTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := db.QueryProjects(ctx, models.DefaultQueryFilter())
	assert.True(t, IsBackendError(err))
}

func TestProjectStats_Empty(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)

	stats, err := db.ProjectStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.Total)
	assert.Equal(t, int64(0), stats.Featured)
	assert.NotNil(t, stats.ByType)
	assert.Empty(t, stats.ByType)
	assert.NotNil(t, stats.ByStatus)
	assert.Empty(t, stats.ByStatus)
}

func TestProjectStats_Consistency(t *testing.T) {
	db := RequireTestDB(t)
	CleanupTestDB(t, db)
	seedProjects(t, db)

	stats, err := db.ProjectStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(6), stats.Total)
	assert.Equal(t, int64(1), stats.Featured)
	assert.Equal(t, map[string]int64{"company": 2, "personal": 2, "freelance": 1}, stats.ByType)
	assert.Equal(t, map[string]int64{"completed": 2, "in_progress": 1, "planned": 1, "archived": 1}, stats.ByStatus)

	var typed int64
	for _, n := range stats.ByType {
		typed += n
	}
	assert.LessOrEqual(t, typed, stats.Total)
	assert.LessOrEqual(t, stats.Featured, stats.Total)
}

func TestInsertProject_RejectsBlankTitle(t *testing.T) {
	db := RequireTestDB(t)

	err := db.InsertProject(context.Background(), &models.Project{Title: " ", Description: "x"})
	assert.ErrorIs(t, err, models.ErrMissingTitle)
}
