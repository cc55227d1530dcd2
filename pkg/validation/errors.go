package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a validation error with field-level details
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Errors))
	for field := range v.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", field, v.Errors[field]))
	}
	return strings.Join(messages, "; ")
}

// NewValidationError creates a new ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	errors := make(map[string]string)

	for _, err := range errs {
		errors[err.Field()] = getErrorMessage(err)
	}

	return &ValidationError{Errors: errors}
}

// getErrorMessage returns a human-readable error message for a validation error
func getErrorMessage(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "currency":
		return fmt.Sprintf("%s must be a supported currency code", field)
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// AddError adds a custom error message for a field
func (v *ValidationError) AddError(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string]string)
	}
	v.Errors[field] = message
}

// HasErrors returns true if there are any validation errors
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}
