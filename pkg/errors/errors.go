package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrPermission     ErrorCode = "PERMISSION"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Location errors
	ErrLocationSpec   ErrorCode = "LOCATION_SPEC"
	ErrRemoteEndpoint ErrorCode = "REMOTE_ENDPOINT"
	ErrDirHasFiles    ErrorCode = "DIR_HAS_FILES"

	// Validation errors
	ErrSourceMissing  ErrorCode = "SOURCE_MISSING"
	ErrSourceNotDir   ErrorCode = "SOURCE_NOT_DIR"
	ErrTargetNotDir   ErrorCode = "TARGET_NOT_DIR"
	ErrTargetOccupied ErrorCode = "TARGET_OCCUPIED"
	ErrMirrorTime     ErrorCode = "MIRROR_TIME"

	// Initialization errors
	ErrTargetCreate  ErrorCode = "TARGET_CREATE"
	ErrDataDirCreate ErrorCode = "DATA_DIR_CREATE"
	ErrIncrDirCreate ErrorCode = "INCREMENTS_DIR_CREATE"
	ErrRepairFailed  ErrorCode = "REPAIR_FAILED"
	ErrNeedsRegress  ErrorCode = "NEEDS_REGRESSION"

	// Mirror errors
	ErrMirrorFailed ErrorCode = "MIRROR_FAILED"
	ErrMarkerWrite  ErrorCode = "MARKER_WRITE"
	ErrStatsWrite   ErrorCode = "STATS_WRITE"

	// Selection errors
	ErrRulesLoad   ErrorCode = "RULES_LOAD"
	ErrRuleInvalid ErrorCode = "RULE_INVALID"

	// Operation executor errors
	ErrOpInvalid ErrorCode = "OPERATION_INVALID"
	ErrOpExecute ErrorCode = "OPERATION_EXECUTE"
)

// RevdiffError represents a structured error with code and details
type RevdiffError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RevdiffError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RevdiffError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RevdiffError) Is(target error) bool {
	var targetErr *RevdiffError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RevdiffError with the given code and message
func New(code ErrorCode, message string) *RevdiffError {
	return &RevdiffError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RevdiffError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RevdiffError {
	return &RevdiffError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RevdiffError
func Wrap(err error, code ErrorCode, message string) *RevdiffError {
	if err == nil {
		return nil
	}
	return &RevdiffError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RevdiffError {
	if err == nil {
		return nil
	}
	return &RevdiffError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RevdiffError) WithDetail(key string, value interface{}) *RevdiffError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var rerr *RevdiffError
	if errors.As(err, &rerr) {
		return rerr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RevdiffError
func GetErrorCode(err error) ErrorCode {
	var rerr *RevdiffError
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	return ErrUnknown
}
