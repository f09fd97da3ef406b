package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrEmptyPrompt        = errors.New("prompt is empty and no image attached")
	ErrExchangeInFlight   = errors.New("an exchange is already in flight for this session")
	ErrUnknownModel       = errors.New("unknown model id")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotSignedIn        = errors.New("no signed-in identity")
)

// ProviderError reports a remote inference failure. The orchestration core
// renders it as assistant text with a visible error marker, never as a
// silent failure.
type ProviderError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed remote persistence call. Persistence
// failures are secondary notices; they never interrupt an active exchange.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
