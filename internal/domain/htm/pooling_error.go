package htm

import "fmt"

// PoolingError represents an error raised while configuring or driving
// the HTM engine: malformed configuration, a lookup of an unknown
// network, region, or input-space id, or a request NetworkService
// refuses (registry at capacity, step past its deadline).
type PoolingError struct {
	ErrorType   PoolingErrorType `json:"error_type"`
	Message     string           `json:"message"`
	ConfigField string           `json:"config_field,omitempty"`
}

// Error implements the error interface.
func (e *PoolingError) Error() string {
	if e.ConfigField != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.ErrorType, e.Message, e.ConfigField)
	}
	return fmt.Sprintf("[%s] %s", e.ErrorType, e.Message)
}

// PoolingErrorType categorizes a PoolingError.
type PoolingErrorType string

const (
	// PoolingErrorConfiguration - malformed or out-of-range Network/Region configuration.
	PoolingErrorConfiguration PoolingErrorType = "configuration_error"
	// PoolingErrorInvalidInput - reference to an unknown network/region/input-space id,
	// or a NetworkService refusal (registry at capacity, step deadline exceeded).
	PoolingErrorInvalidInput PoolingErrorType = "invalid_input"
)

// NewPoolingError creates a PoolingError with no associated config field.
func NewPoolingError(errorType PoolingErrorType, message string) *PoolingError {
	return &PoolingError{ErrorType: errorType, Message: message}
}

// NewPoolingErrorWithField creates a PoolingError naming the offending
// configuration field.
func NewPoolingErrorWithField(errorType PoolingErrorType, message, configField string) *PoolingError {
	return &PoolingError{ErrorType: errorType, Message: message, ConfigField: configField}
}
