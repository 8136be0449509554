package vpn

import (
	"errors"
	"strings"
)

// ErrValidation indicates invalid user input. Every *ValidationError matches it.
var ErrValidation = errors.New("vpn validation failed")

// Validation rule identifiers reported in FieldError.Rule.
const (
	RuleRequired          = "required"
	RuleFormat            = "format"
	RuleEnum              = "enum"
	RuleVendorRequirement = "vendor_requirement"
)

// FieldError describes one violated rule on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError enumerates every violation found in a request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Error())
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Fields maps each offending field to its messages, joined when a field
// violated more than one rule.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		if existing, ok := out[fe.Field]; ok {
			out[fe.Field] = existing + "; " + fe.Message
			continue
		}
		out[fe.Field] = fe.Message
	}
	return out
}

// Has reports whether field has at least one violation.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, rule, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Rule: rule, Message: message})
}

func (e *ValidationError) empty() bool {
	return len(e.Errors) == 0
}
