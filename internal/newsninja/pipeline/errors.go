package pipeline

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidRequest is returned for malformed requests.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrConfigMissing is returned when a required credential is unset.
	ErrConfigMissing = errors.New("configuration missing")
	// ErrNoDataAvailable is returned when no source kind produced a result.
	ErrNoDataAvailable = errors.New("no data sources available")
	// ErrScriptTooShort is returned when synthesis produced almost nothing.
	ErrScriptTooShort = errors.New("failed to generate meaningful content")
	// ErrUnexpected wraps recovered panics.
	ErrUnexpected = errors.New("unexpected error")
)

// ConfigMissingError names the unset credentials.
type ConfigMissingError struct {
	Keys []string
}

func (e *ConfigMissingError) Error() string {
	return strings.Join(e.Keys, ", ") + " not configured"
}

func (e *ConfigMissingError) Unwrap() error { return ErrConfigMissing }
