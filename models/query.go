package models

import (
	"strconv"
	"time"
)

// Pagination defaults and bounds for GET /api/projects.
const (
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "priority"
	DefaultOrder = "desc"
)

// QueryFilter is the validated, request-scoped project query.
// Nil pointers mean the filter was not supplied and is not applied.
type QueryFilter struct {
	Type     *string `json:"type,omitempty" validate:"omitempty,oneof=company personal freelance"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=completed in_progress planned archived"`
	Featured *bool   `json:"featured,omitempty"`
	Search   *string `json:"search,omitempty" validate:"omitempty,min=3,max=200"`
	Limit    int     `json:"limit" validate:"min=1,max=100"`
	Offset   int     `json:"offset" validate:"min=0"`
	Sort     string  `json:"sort" validate:"oneof=created_at updated_at title priority"`
	Order    string  `json:"order" validate:"oneof=asc desc"`
}

// DefaultQueryFilter returns the filter used when no parameters are given.
func DefaultQueryFilter() QueryFilter {
	return QueryFilter{
		Limit: DefaultLimit,
		Sort:  DefaultSort,
		Order: DefaultOrder,
	}
}

// Pages returns ceil(total/limit).
func (f QueryFilter) Pages(total int64) int64 {
	if f.Limit <= 0 || total <= 0 {
		return 0
	}
	limit := int64(f.Limit)
	return (total + limit - 1) / limit
}

// CurrentPage returns the 1-based page the offset falls on.
func (f QueryFilter) CurrentPage() int {
	if f.Limit <= 0 {
		return 1
	}
	return f.Offset/f.Limit + 1
}

// Pagination describes the window of a list response.
type Pagination struct {
	Total       int64 `json:"total"`
	Limit       int   `json:"limit"`
	Offset      int   `json:"offset"`
	Pages       int64 `json:"pages"`
	CurrentPage int   `json:"currentPage"`
}

// NewPagination builds the pagination block for a filtered result.
func NewPagination(f QueryFilter, total int64) Pagination {
	return Pagination{
		Total:       total,
		Limit:       f.Limit,
		Offset:      f.Offset,
		Pages:       f.Pages(total),
		CurrentPage: f.CurrentPage(),
	}
}

type AppliedFilters struct {
	Type     *string `json:"type,omitempty"`
	Status   *string `json:"status,omitempty"`
	Featured *bool   `json:"featured,omitempty"`
	Search   *string `json:"search,omitempty"`
}

type Sorting struct {
	Sort  string `json:"sort"`
	Order string `json:"order"`
}

// QueryMetadata is informational only; ExecutionTime is formatted as "<n>ms".
type QueryMetadata struct {
	ExecutionTime string         `json:"executionTime"`
	ResultsCount  int            `json:"resultsCount"`
	Filters       AppliedFilters `json:"filters"`
	Sorting       Sorting        `json:"sorting"`
}

// ProjectsResponse is the body of a successful GET /api/projects.
type ProjectsResponse struct {
	Success    bool          `json:"success"`
	Data       []Project     `json:"data"`
	Pagination Pagination    `json:"pagination"`
	Metadata   QueryMetadata `json:"metadata"`
	Timestamp  time.Time     `json:"timestamp"`
}

// ProjectResponse is the body of GET /api/projects/:id.
type ProjectResponse struct {
	Success bool    `json:"success"`
	Data    Project `json:"data"`
}

type StatsMetadata struct {
	ExecutionTime   string `json:"executionTime"`
	QueriesExecuted int    `json:"queriesExecuted"`
}

// StatsResponse is the body of a successful GET /api/projects/stats.
type StatsResponse struct {
	Success   bool          `json:"success"`
	Data      ProjectStats  `json:"data"`
	Metadata  StatsMetadata `json:"metadata"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Success   bool      `json:"success"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Database  string    `json:"database"`
}

// FieldViolation names one rejected input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool             `json:"success"`
	Error   string           `json:"error"`
	Message string           `json:"message,omitempty"`
	Details []FieldViolation `json:"details,omitempty"`
}

// FormatDuration renders an execution time as whole milliseconds.
func FormatDuration(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
