package app

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPrompt gates enhancement: an empty idea is a no-op.
	ErrEmptyPrompt = errors.New("prompt text required")
	// ErrNoEnhancedPrompt gates generation until an enhanced prompt exists.
	ErrNoEnhancedPrompt = errors.New("no enhanced prompt: run enhancement first")
	// ErrUnknownProvider reports a selection outside the fixed table.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrInvalidTemperature reports a temperature outside [0.0, 1.0].
	ErrInvalidTemperature = errors.New("temperature must be between 0.0 and 1.0")

	// ErrMissingCredential and ErrCompletionFailed are the two user-facing
	// error kinds. Match with errors.Is; the typed errors below carry detail.
	ErrMissingCredential = errors.New("missing credential")
	ErrCompletionFailed  = errors.New("completion failed")
)

// MissingCredentialError names the exact environment variable to set. It is
// returned before any network call is attempted.
type MissingCredentialError struct {
	Provider string
	EnvVar   string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s API key not found: set %s in your environment or .env file", e.Provider, e.EnvVar)
}

func (e *MissingCredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// CompletionError wraps whatever the completion backend surfaced — network,
// auth, rate limit, malformed response — into one user-visible kind.
type CompletionError struct {
	Provider string
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion with %s failed: %v", e.Provider, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

func (e *CompletionError) Is(target error) bool {
	return target == ErrCompletionFailed
}
