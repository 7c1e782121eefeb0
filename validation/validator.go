// Package validation validates request input and reports failures as a
// 400 AppError carrying per-field details.
//
// Struct tags (`validate:"required,email"`) cover request DTOs; the fluent
// Validator covers checks that depend on runtime values.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/feedback/errors"
)

// FieldError is a validation failure for a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator collects field errors.
type Validator struct {
	errors []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any error was recorded.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the recorded errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns the collected errors as an AppError, or nil.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	return fieldErrors(v.errors)
}

// Required checks that value is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// MaxLength checks that value is at most maxLen bytes.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return v
}

// OneOf checks that a non-empty value is in allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value != "" && !slices.Contains(allowed, value) {
		v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	}
	return v
}

// Custom records message for field unless ok holds.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

func fieldErrors(fields []FieldError) *errors.AppError {
	messages := make([]string, len(fields))
	for i, e := range fields {
		messages[i] = e.Field + ": " + e.Message
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", fields)
}
