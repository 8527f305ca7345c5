package generate

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured = errors.New("provider not configured")
	ErrUnreachable   = errors.New("provider unreachable")
	ErrUpstream      = errors.New("provider request failed")
)

// ProviderError classifies a generation failure. Kind is one of the sentinels
// above; Message is safe to show to the caller.
type ProviderError struct {
	Provider string
	Kind     error
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func notConfigured(provider, message string) error {
	return &ProviderError{Provider: provider, Kind: ErrNotConfigured, Message: message}
}

func unreachable(provider, message string, err error) error {
	return &ProviderError{Provider: provider, Kind: ErrUnreachable, Message: message, Err: err}
}

func upstream(provider, message string, err error) error {
	return &ProviderError{Provider: provider, Kind: ErrUpstream, Message: message, Err: err}
}
