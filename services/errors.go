package services

import (
	"errors"
	"fmt"
)

// ErrRateLimited marks a provider rejection caused by quota exhaustion
var ErrRateLimited = errors.New("provider rate limit exceeded")

// ProviderError reports a failed upstream call with enough context to log
// which provider and which instrument or query was involved.
type ProviderError struct {
	Provider   string
	Operation  string
	Instrument string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Instrument != "" {
		return fmt.Sprintf("%s %s(%s): %v", e.Provider, e.Operation, e.Instrument, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err stems from a provider rate limit
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
