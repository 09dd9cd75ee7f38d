package validation

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"folio/models"
)

// queryFields is the accepted parameter set, in reporting order.
var queryFields = []string{"type", "status", "featured", "search", "limit", "offset", "sort", "order"}

func fieldRank(name string) int {
	for i, f := range queryFields {
		if f == name {
			return i
		}
	}
	return len(queryFields)
}

// ParseProjectQuery turns raw query parameters into a validated QueryFilter.
// Omitted parameters take their defaults. On failure it returns an *Error
// enumerating every violation, including unknown and malformed parameters.
func ParseProjectQuery(values url.Values) (models.QueryFilter, error) {
	filter := models.DefaultQueryFilter()
	verr := &Error{}

	var unknown []string
	for key := range values {
		if fieldRank(key) == len(queryFields) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)

	single := func(key string) (string, bool) {
		vals, ok := values[key]
		if !ok {
			return "", false
		}
		if len(vals) != 1 {
			verr.Add(key, key+" must be a single value")
			return "", false
		}
		v := strings.TrimSpace(vals[0])
		if v == "" {
			verr.Add(key, key+" is not allowed to be empty")
			return "", false
		}
		return v, true
	}

	if v, ok := single("type"); ok {
		filter.Type = &v
	}
	if v, ok := single("status"); ok {
		filter.Status = &v
	}
	if v, ok := single("featured"); ok {
		switch strings.ToLower(v) {
		case "true":
			b := true
			filter.Featured = &b
		case "false":
			b := false
			filter.Featured = &b
		default:
			verr.Add("featured", "featured must be a boolean")
		}
	}
	if v, ok := single("search"); ok {
		filter.Search = &v
	}
	if v, ok := single("limit"); ok {
		if n, err := strconv.Atoi(v); err != nil {
			verr.Add("limit", "limit must be an integer")
		} else {
			filter.Limit = n
		}
	}
	if v, ok := single("offset"); ok {
		if n, err := strconv.Atoi(v); err != nil {
			verr.Add("offset", "offset must be an integer")
		} else {
			filter.Offset = n
		}
	}
	if v, ok := single("sort"); ok {
		filter.Sort = v
	}
	if v, ok := single("order"); ok {
		filter.Order = strings.ToLower(v)
	}

	if err := Struct(filter); err != nil {
		if fieldErrs, ok := AsError(err); ok {
			for _, v := range fieldErrs.Violations {
				if !verr.Has(v.Field) {
					verr.Violations = append(verr.Violations, v)
				}
			}
		}
	}

	sort.SliceStable(verr.Violations, func(i, j int) bool {
		return fieldRank(verr.Violations[i].Field) < fieldRank(verr.Violations[j].Field)
	})
	for _, key := range unknown {
		verr.Add(key, key+" is not allowed")
	}

	if err := verr.OrNil(); err != nil {
		return models.QueryFilter{}, err
	}
	return filter, nil
}

// EncodeProjectQuery is the inverse of ParseProjectQuery, omitting defaults.
func EncodeProjectQuery(f models.QueryFilter) url.Values {
	values := url.Values{}
	if f.Type != nil {
		values.Set("type", *f.Type)
	}
	if f.Status != nil {
		values.Set("status", *f.Status)
	}
	if f.Featured != nil {
		values.Set("featured", strconv.FormatBool(*f.Featured))
	}
	if f.Search != nil {
		values.Set("search", *f.Search)
	}
	if f.Limit != models.DefaultLimit {
		values.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset != 0 {
		values.Set("offset", strconv.Itoa(f.Offset))
	}
	if f.Sort != "" && f.Sort != models.DefaultSort {
		values.Set("sort", f.Sort)
	}
	if f.Order != "" && f.Order != models.DefaultOrder {
		values.Set("order", f.Order)
	}
	return values
}
