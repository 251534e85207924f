package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Validator struct {
	errors []ValidationError
}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors = append(v.errors, ValidationError{field, "is required"})
	}
	return v
}

func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.errors = append(v.errors, ValidationError{field, fmt.Sprintf("must be at most %d characters", max)})
	}
	return v
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func (v *Validator) Email(field, value string) *Validator {
	if !emailRegex.MatchString(value) {
		v.errors = append(v.errors, ValidationError{field, "must be a valid email address"})
	}
	return v
}

// digitsOnly rejects anything that is not a plain decimal integer.
// Report parameters go through here before being bound, so injection
// style input never reaches a query at all.
var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// PositiveInt parses a strictly positive integer field.
func PositiveInt(field, value string) (uint, error) {
	value = strings.TrimSpace(value)
	if !digitsOnly.MatchString(value) {
		return 0, ValidationError{field, "must be a positive integer"}
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil || n == 0 {
		return 0, ValidationError{field, "must be a positive integer"}
	}
	return uint(n), nil
}

// RecapDate parses the report form's MM/DD/YYYY date.
func RecapDate(field, value string) (time.Time, error) {
	t, err := time.Parse("01/02/2006", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ValidationError{field, "must be a MM/DD/YYYY date"}
	}
	return t, nil
}

// WindowTimestamp parses the export window's YYYY-MM-DD HH:MM:SS bound.
func WindowTimestamp(field, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ValidationError{field, "must be a YYYY-MM-DD HH:MM:SS timestamp"}
	}
	return t, nil
}

func (v *Validator) Valid() bool {
	return len(v.errors) == 0
}

func (v *Validator) Errors() []ValidationError {
	return v.errors
}

func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{field, message})
}
