package llm

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// APIError is returned when a provider answers with an error payload or a non-2xx status.
type APIError struct {
	Provider   Provider
	StatusCode int
	Status     string // provider status string, e.g. "RESOURCE_EXHAUSTED"
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s API error (%d %s): %s", e.Provider, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// ErrEmptyResponse is returned when the provider answered but produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

// IsQuota reports whether err is a rate-limit or quota rejection.
func IsQuota(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "quota")
}

// isRetryableError determines if an error is worth retrying on the same model.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "connection reset")
}
