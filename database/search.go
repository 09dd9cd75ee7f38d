package database

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidSearch is returned when a search term yields no usable tsquery.
var ErrInvalidSearch = errors.New("invalid search query")

// SearchError carries the client-facing reason a term was rejected.
// It matches ErrInvalidSearch under errors.Is.
type SearchError struct {
	Message string
}

func (e *SearchError) Error() string {
	return ErrInvalidSearch.Error() + ": " + e.Message
}

func (e *SearchError) Is(target error) bool {
	return target == ErrInvalidSearch
}

// tsqueryOperators strips characters with meaning in to_tsquery syntax.
var tsqueryOperators = strings.NewReplacer(
	`"`, " ", "'", " ", "(", " ", ")", " ",
	"&", " ", "|", " ", "!", " ", ":", " ",
	"*", " ", "<", " ", ">", " ", `\`, " ",
)

// SearchQueryParser validates and transforms user search terms to
// PostgreSQL tsquery format. Every word becomes a prefix match, so
// "post" finds "Postgres".
type SearchQueryParser struct {
	minLength int
	maxLength int
}

// NewSearchQueryParser creates a SearchQueryParser with the limits of the
// projects search filter: 3 to 200 characters.
func NewSearchQueryParser() *SearchQueryParser {
	return &SearchQueryParser{
		minLength: 3,
		maxLength: 200,
	}
}

// Parse converts a search term to tsquery format.
//
//	"React Native" → "react:* & native:*"
//	"go (api)"     → "go:* & api:*"
//	"a test b"     → "test:*"
func (p *SearchQueryParser) Parse(query string) (string, error) {
	query = strings.TrimSpace(query)

	if utf8.RuneCountInString(query) < p.minLength {
		return "", &SearchError{Message: fmt.Sprintf("search must be at least %d characters long", p.minLength)}
	}

	if utf8.RuneCountInString(query) > p.maxLength {
		return "", &SearchError{Message: fmt.Sprintf("search must be less than or equal to %d characters long", p.maxLength)}
	}

	validWords := p.filterValidWords(strings.Fields(p.sanitize(query)))
	if len(validWords) == 0 {
		return "", &SearchError{Message: "search must contain at least one word of two or more characters"}
	}

	for i, word := range validWords {
		validWords[i] = word + ":*"
	}
	return strings.Join(validWords, " & "), nil
}

func (p *SearchQueryParser) sanitize(query string) string {
	return tsqueryOperators.Replace(query)
}

func (p *SearchQueryParser) filterValidWords(words []string) []string {
	valid := []string{}
	for _, word := range words {
		if utf8.RuneCountInString(word) >= 2 {
			valid = append(valid, strings.ToLower(word))
		}
	}
	return valid
}
