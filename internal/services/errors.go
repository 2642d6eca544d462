package services

import (
	"errors"
	"strings"
)

var (
	// ErrSeoEntryNotFound indicates no live entry exists for the slug.
	ErrSeoEntryNotFound = errors.New("seo entry service: entry not found")
	// ErrSeoEntryConflict indicates the requested slug is already used.
	ErrSeoEntryConflict = errors.New("seo entry service: slug already taken")
	// ErrSeoEntryInvalidInput indicates the editing form failed validation.
	ErrSeoEntryInvalidInput = errors.New("seo entry service: invalid input")

	// ErrProductNotFound indicates the product id does not exist.
	ErrProductNotFound = errors.New("catalog service: product not found")

	// ErrCompanyInfoNotFound indicates the site identity has not been configured.
	ErrCompanyInfoNotFound = errors.New("company service: company info not found")
	// ErrCompanyNotFound indicates no company profile exists for the slug.
	ErrCompanyNotFound = errors.New("company service: company not found")
	// ErrCompanyInvalidInput indicates a company profile failed validation.
	ErrCompanyInvalidInput = errors.New("company service: invalid input")

	// ErrContactInvalidInput indicates the contact form failed validation.
	ErrContactInvalidInput = errors.New("contact service: invalid input")
)

// ValidationError carries per-field messages in the order fields were checked.
type ValidationError struct {
	kind   error
	fields map[string][]string
	order  []string
}

func newValidationError(kind error) *ValidationError {
	return &ValidationError{kind: kind, fields: make(map[string][]string)}
}

func (e *ValidationError) add(field, message string) {
	if _, seen := e.fields[field]; !seen {
		e.order = append(e.order, field)
	}
	e.fields[field] = append(e.fields[field], message)
}

func (e *ValidationError) empty() bool { return len(e.order) == 0 }

// Fields returns the messages keyed by field.
func (e *ValidationError) Fields() map[string][]string { return e.fields }

// Order returns field names in the order they failed.
func (e *ValidationError) Order() []string { return e.order }

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.order))
	for _, field := range e.order {
		parts = append(parts, field+": "+strings.Join(e.fields[field], "; "))
	}
	return e.kind.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return e.kind }
