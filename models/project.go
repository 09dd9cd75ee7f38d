package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project types and statuses accepted by the list filter.
const (
	ProjectTypeCompany   = "company"
	ProjectTypePersonal  = "personal"
	ProjectTypeFreelance = "freelance"

	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
	StatusPlanned    = "planned"
	StatusArchived   = "archived"
)

// Project is a row of the projects table as served to the frontend.
// Technologies keeps display order; duplicates are allowed.
type Project struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Description      string    `json:"description" db:"description"`
	ShortDescription *string   `json:"short_description,omitempty" db:"short_description"`
	Technologies     []string  `json:"technologies" db:"technologies"`
	ProjectType      *string   `json:"project_type" db:"project_type"`
	Status           *string   `json:"status" db:"status"`
	IsFeatured       bool      `json:"is_featured" db:"is_featured"`
	Priority         int       `json:"priority" db:"priority"`
	GithubURL        *string   `json:"github_url,omitempty" db:"github_url"`
	LiveURL          *string   `json:"live_url,omitempty" db:"live_url"`
	ImageURL         *string   `json:"image_url,omitempty" db:"image_url"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

var (
	ErrMissingTitle       = errors.New("project title is required")
	ErrMissingDescription = errors.New("project description is required")
)

// Validate re-checks the display invariants the API trusts the backend for.
func (p *Project) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, ErrMissingTitle)
	}
	if strings.TrimSpace(p.Description) == "" {
		errs = append(errs, ErrMissingDescription)
	}
	return errors.Join(errs...)
}

// DisplayReady reports whether the project can be rendered.
func (p *Project) DisplayReady() bool {
	return p.Validate() == nil
}

// PrimaryURL prefers the live deployment over the repository link.
func (p *Project) PrimaryURL() string {
	if p.LiveURL != nil && *p.LiveURL != "" {
		return *p.LiveURL
	}
	if p.GithubURL != nil {
		return *p.GithubURL
	}
	return ""
}

// ProjectStats is the aggregate served by GET /api/projects/stats.
type ProjectStats struct {
	Total     int64            `json:"total"`
	Featured  int64            `json:"featured"`
	ByType    map[string]int64 `json:"byType"`
	ByStatus  map[string]int64 `json:"byStatus"`
	Breakdown StatsBreakdown   `json:"breakdown"`
}

// StatsBreakdown flattens the categories the frontend renders directly.
type StatsBreakdown struct {
	Company    int64 `json:"company"`
	Personal   int64 `json:"personal"`
	Freelance  int64 `json:"freelance"`
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"inProgress"`
}

// TallyStats reduces per-row categories into counts. Nil categories are
// skipped in the maps; total and featured are supplied by the caller.
func TallyStats(types, statuses []*string, featured, total int64) ProjectStats {
	stats := ProjectStats{
		Total:    total,
		Featured: featured,
		ByType:   map[string]int64{},
		ByStatus: map[string]int64{},
	}

	for _, t := range types {
		if t != nil {
			stats.ByType[*t]++
		}
	}
	for _, s := range statuses {
		if s != nil {
			stats.ByStatus[*s]++
		}
	}

	stats.Breakdown = StatsBreakdown{
		Company:    stats.ByType[ProjectTypeCompany],
		Personal:   stats.ByType[ProjectTypePersonal],
		Freelance:  stats.ByType[ProjectTypeFreelance],
		Completed:  stats.ByStatus[StatusCompleted],
		InProgress: stats.ByStatus[StatusInProgress],
	}
	return stats
}
