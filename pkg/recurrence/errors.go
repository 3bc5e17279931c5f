package recurrence

import "fmt"

// ValidationError reports a malformed or contradictory recurrence definition.
// It is always returned before any occurrence is generated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid recurrence: %s", e.Reason)
	}
	return fmt.Sprintf("invalid recurrence: %s: %s", e.Field, e.Reason)
}

// ConfigurationError is returned when a frequency the expansion engine does not
// know about reaches it. It points to a broken contract upstream rather than bad user input.
type ConfigurationError struct {
	Frequency string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unsupported recurrence frequency %q", e.Frequency)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
