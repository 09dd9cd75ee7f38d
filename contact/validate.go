package contact

import (
	"fmt"
	"strings"

	"folio/models"
	"folio/validation"
)

// ValidationError lists every field a submission violated.
type ValidationError = validation.Error

// Rules bounds the contact form fields, in characters.
type Rules struct {
	MinName    int
	MaxName    int
	MinMessage int
	MaxMessage int
	MaxSubject int
}

func DefaultRules() Rules {
	return Rules{
		MinName:    2,
		MaxName:    100,
		MinMessage: 10,
		MaxMessage: 5000,
		MaxSubject: 200,
	}
}

// Validate checks a sanitized message in order: required fields, email
// format, then length bounds. A field that failed an earlier check is not
// checked again, so each field reports at most one violation.
func Validate(m *models.ContactMessage, rules Rules) error {
	verr := &ValidationError{}

	required := []struct {
		field string
		value string
	}{
		{"name", m.Name},
		{"email", m.Email},
		{"message", m.Message},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			verr.Add(r.field, r.field+" is required")
		}
	}

	if !verr.Has("email") {
		collect(verr, validation.Var("email", m.Email, "contactemail"))
	}

	if !verr.Has("name") {
		collect(verr, validation.Var("name", m.Name, fmt.Sprintf("min=%d,max=%d", rules.MinName, rules.MaxName)))
	}
	if m.Subject != "" && rules.MaxSubject > 0 {
		collect(verr, validation.Var("subject", m.Subject, fmt.Sprintf("max=%d", rules.MaxSubject)))
	}
	if !verr.Has("message") {
		collect(verr, validation.Var("message", m.Message, fmt.Sprintf("min=%d,max=%d", rules.MinMessage, rules.MaxMessage)))
	}

	return verr.OrNil()
}

func collect(into *ValidationError, err error) {
	if verr, ok := validation.AsError(err); ok {
		into.Violations = append(into.Violations, verr.Violations...)
	}
}
