package database

import (
	"fmt"
	"strings"
)

const (
	columnID          = "id"
	columnTitle       = "title"
	columnProjectType = "project_type"
	columnStatus      = "status"
	columnIsFeatured  = "is_featured"
	columnPriority    = "priority"
	columnCreatedAt   = "created_at"
	columnUpdatedAt   = "updated_at"

	// searchDocument must match the expression of idx_projects_search.
	searchDocument = "to_tsvector('english', title || ' ' || description)"
)

// sortColumns whitelists the columns a caller may order by.
var sortColumns = map[string]string{
	"created_at": columnCreatedAt,
	"updated_at": columnUpdatedAt,
	"title":      columnTitle,
	"priority":   columnPriority,
}

// QueryBuilder helps build WHERE clauses safely
type QueryBuilder struct {
	conditions []string
	args       []interface{}
	argCount   int
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{
		conditions: []string{},
		args:       []interface{}{},
		argCount:   1,
	}
}

func (qb *QueryBuilder) AddCondition(column string, value interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s = $%d", column, qb.argCount))
	qb.args = append(qb.args, value)
	qb.argCount++
}

// AddFullTextSearch matches tsQuery, already in to_tsquery syntax, against document.
func (qb *QueryBuilder) AddFullTextSearch(document, tsQuery string) {
	qb.conditions = append(qb.conditions,
		fmt.Sprintf("%s @@ to_tsquery('english', $%d)", document, qb.argCount))
	qb.args = append(qb.args, tsQuery)
	qb.argCount++
}

func (qb *QueryBuilder) WhereClause() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

func (qb *QueryBuilder) Args() []interface{} {
	return qb.args
}

func (qb *QueryBuilder) NextArgNum() int {
	return qb.argCount
}

// OrderClause returns an ORDER BY clause for a whitelisted sort key.
// id ASC is appended so equal keys page deterministically.
func OrderClause(sort, order string) (string, error) {
	column, ok := sortColumns[sort]
	if !ok {
		return "", fmt.Errorf("unsupported sort column %q", sort)
	}

	direction := "DESC"
	switch strings.ToLower(order) {
	case "asc":
		direction = "ASC"
	case "desc", "":
	default:
		return "", fmt.Errorf("unsupported sort order %q", order)
	}

	return fmt.Sprintf("ORDER BY %s %s, %s ASC", column, direction, columnID), nil
}
