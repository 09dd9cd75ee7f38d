package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"folio/database"
	"folio/logging"
	"folio/metrics"
	"folio/models"
	"folio/validation"
)

// ProjectStore is the read side of the projects table.
type ProjectStore interface {
	QueryProjects(ctx context.Context, f models.QueryFilter) ([]models.Project, int64, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ProjectStats(ctx context.Context) (models.ProjectStats, error)
}

func ListProjects(store ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		filter, err := validation.ParseProjectQuery(c.Request.URL.Query())
		if err != nil {
			respondValidationError(c, "Invalid query parameters", err)
			return
		}

		projects, total, err := store.QueryProjects(c.Request.Context(), filter)
		metrics.RecordDBQuery("query_projects", time.Since(start), err)
		if err != nil {
			if errors.Is(err, database.ErrInvalidSearch) {
				respondSearchError(c, err)
				return
			}
			respondBackendError(c, "query_projects", err,
				"Database query failed", "Unable to fetch projects from database")
			return
		}

		logging.Debug().
			Int("results", len(projects)).
			Int64("total", total).
			Dur("duration", time.Since(start)).
			Msg("Projects fetched")

		c.JSON(http.StatusOK, models.ProjectsResponse{
			Success:    true,
			Data:       projects,
			Pagination: models.NewPagination(filter, total),
			Metadata: models.QueryMetadata{
				ExecutionTime: models.FormatDuration(time.Since(start)),
				ResultsCount:  len(projects),
				Filters: models.AppliedFilters{
					Type:     filter.Type,
					Status:   filter.Status,
					Featured: filter.Featured,
					Search:   filter.Search,
				},
				Sorting: models.Sorting{Sort: filter.Sort, Order: filter.Order},
			},
			Timestamp: time.Now().UTC(),
		})
	}
}

func GetProject(store ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid project ID", "", nil)
			return
		}

		start := time.Now()
		project, err := store.GetProject(c.Request.Context(), id)
		metrics.RecordDBQuery("get_project", time.Since(start), err)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, models.ProjectResponse{Success: true, Data: *project})
		case errors.Is(err, database.ErrNotFound):
			respondError(c, http.StatusNotFound, "Project not found", "", nil)
		default:
			respondBackendError(c, "get_project", err,
				"Database query failed", "Unable to fetch project from database")
		}
	}
}

func ProjectStats(store ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		stats, err := store.ProjectStats(c.Request.Context())
		metrics.RecordDBQuery("project_stats", time.Since(start), err)
		if err != nil {
			respondBackendError(c, "project_stats", err, "Failed to fetch statistics", "")
			return
		}

		c.JSON(http.StatusOK, models.StatsResponse{
			Success: true,
			Data:    stats,
			Metadata: models.StatsMetadata{
				ExecutionTime:   models.FormatDuration(time.Since(start)),
				QueriesExecuted: database.StatsQueries,
			},
			Timestamp: time.Now().UTC(),
		})
	}
}

func respondValidationError(c *gin.Context, errMsg string, err error) {
	verr, ok := validation.AsError(err)
	if !ok {
		respondError(c, http.StatusBadRequest, errMsg, err.Error(), nil)
		return
	}
	logging.Warn().
		Str("path", c.Request.URL.Path).
		Str("query", c.Request.URL.RawQuery).
		Int("violations", len(verr.Violations)).
		Msg("Invalid request")
	respondError(c, http.StatusBadRequest, errMsg, verr.Error(), verr.Violations)
}

func respondSearchError(c *gin.Context, err error) {
	message := "search is not a valid search term"
	var serr *database.SearchError
	if errors.As(err, &serr) {
		message = serr.Message
	}
	respondError(c, http.StatusBadRequest, "Invalid query parameters", message,
		[]models.FieldViolation{{Field: "search", Message: message}})
}
