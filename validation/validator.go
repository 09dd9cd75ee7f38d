// Package validation wraps go-playground/validator with the field naming and
// messages the API reports back to clients.
//
// Every violation is collected, not only the first, so a 400 response lists
// all fields the caller must fix.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"folio/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// emailPattern is deliberately looser than RFC 5322.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
		_ = validate.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// fieldName reports json or form tag names instead of Go field names.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Error is a ValidationError: the request failed one or more declared constraints.
type Error struct {
	Violations []models.FieldViolation
}

func (e *Error) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		messages[i] = v.Message
	}
	return strings.Join(messages, "; ")
}

// Add appends a violation.
func (e *Error) Add(field, message string) {
	e.Violations = append(e.Violations, models.FieldViolation{Field: field, Message: message})
}

// Has reports whether a violation was already recorded for field.
func (e *Error) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns nil when no violations were recorded.
func (e *Error) OrNil() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

// AsError extracts a validation *Error from err.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Struct validates v against its validate tags.
func Struct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	out := &Error{}
	appendValidatorErrors(out, err, "")
	return out.OrNil()
}

// Var validates a single value against tag and reports violations under field.
func Var(field string, value interface{}, tag string) error {
	err := Validator().Var(value, tag)
	if err == nil {
		return nil
	}
	out := &Error{}
	appendValidatorErrors(out, err, field)
	return out.OrNil()
}

func appendValidatorErrors(out *Error, err error, field string) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out.Add(field, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		out.Add(name, Message(name, fe))
	}
}

// Message renders a client-facing message for a failed tag.
func Message(field string, fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be less than or equal to %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email", "contactemail":
		return fmt.Sprintf("%s must be a valid email address", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
