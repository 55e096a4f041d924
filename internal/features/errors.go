package features

import "fmt"

// ValidationError reports an absent or unusable request attribute.
type ValidationError struct {
	Field   string
	Reason  string
	Missing bool
}

// Missing builds a ValidationError for an absent required attribute.
func Missing(field string) *ValidationError {
	return &ValidationError{Field: field, Missing: true}
}

// Invalid builds a ValidationError for a present but unusable attribute.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Missing {
		return "Missing required field: " + e.Field
	}
	if e.Reason == "" {
		return "Invalid value for field: " + e.Field
	}
	return fmt.Sprintf("Invalid value for field: %s (%s)", e.Field, e.Reason)
}
