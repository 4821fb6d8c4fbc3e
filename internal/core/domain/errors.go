package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the referenced account or zone does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation (duplicate zone_id,
	// subdomain name or credentials).
	ErrConflict = errors.New("conflict")
	// ErrInternal indicates a broken store invariant, e.g. an id collision.
	ErrInternal = errors.New("internal error")
)

// Validation failure reasons. These are stable identifiers surfaced to API
// clients alongside the offending field.
const (
	ReasonTooShort                = "too_short"
	ReasonTooLong                 = "too_long"
	ReasonInvalidChars            = "invalid_chars"
	ReasonLeadingOrTrailingHyphen = "leading_or_trailing_hyphen"
	ReasonWrongLength             = "wrong_length"
	ReasonNonHex                  = "non_hex"
	ReasonNotLowercase            = "not_lowercase"
	ReasonBelowMinimum            = "below_minimum"
	ReasonAboveMaximum            = "above_maximum"
	ReasonNoMethodProvided        = "no_method_provided"
	ReasonEmptyToken              = "empty_token"
	ReasonEmptyAPIKey             = "empty_api_key"
	ReasonEmptyEmail              = "empty_email"
	ReasonMalformedEmail          = "malformed_email"
	ReasonEmpty                   = "empty"
)

// ValidationError reports a field-level validation failure with a stable
// reason code and a human-readable message.
type ValidationError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field '%s': %s (%s)", e.Field, e.Message, e.Reason)
}

func newValidationError(field, reason, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}
