package llmprovider

import (
	"errors"
	"fmt"
)

var (
	// ErrAllProvidersFailed indicates all providers failed to generate content
	ErrAllProvidersFailed = errors.New("all providers failed")

	// ErrNoProvidersConfigured indicates no providers are enabled
	ErrNoProvidersConfigured = errors.New("no providers configured")

	// ErrEmptyResponse indicates the provider returned no completion choices
	ErrEmptyResponse = errors.New("empty response")

	// ErrProviderTimeout indicates a provider request timed out
	ErrProviderTimeout = errors.New("provider timeout")
)

// ProviderError wraps provider-specific errors
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
