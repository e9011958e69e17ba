package errors

import "fmt"

// ConfigurationError reports a missing or malformed config or credentials file.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error (%s): %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// AuthenticationError reports rejected credentials from the remote API.
type AuthenticationError struct {
	Server string
	Status int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication rejected by %s (status %d)", e.Server, e.Status)
}

// TransportError reports an unreachable API or a non-success response.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("transport error for %s: status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError reports malformed caller input such as a bad date range.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %v", e.Err)
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Sentinel errors for conditions callers branch on.
var (
	ErrEmptyResult     = fmt.Errorf("query matched no records")
	ErrSchoolNotFound  = fmt.Errorf("school not found")
	ErrEndBeforeStart  = fmt.Errorf("end date before start date")
	ErrBadDateFormat   = fmt.Errorf("date must be YYYY-MM-DD")
	ErrMissingSection  = fmt.Errorf("missing [default] section")
	ErrMissingKey      = fmt.Errorf("missing required key")
	ErrUnknownTimezone = fmt.Errorf("unknown timezone name")
)
