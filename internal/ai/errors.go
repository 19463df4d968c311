package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrModelUnavailable is returned once the attempt budget is exhausted. It
// wraps the last provider or decode error; callers match it with errors.Is.
var ErrModelUnavailable = errors.New("model unavailable")

// ProviderError is a non-2xx response from the model endpoint, carrying the
// provider's error classification when one was decodable.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Message)
}

// Throttled reports whether the provider asked us to slow down.
func (e *ProviderError) Throttled() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "ThrottlingException"
}

// Transient reports whether the provider was temporarily unavailable.
func (e *ProviderError) Transient() bool {
	return e.StatusCode == http.StatusServiceUnavailable || e.Code == "ServiceUnavailableException"
}

// slowRetry reports whether err warrants the exponential-backoff schedule.
// Anything else gets the short fixed pause.
func slowRetry(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Throttled() || pe.Transient()
	}
	return false
}
