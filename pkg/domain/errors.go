package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the
// checkpoint store. It is non-retryable: the caller must start a new session.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionBusy is returned when a resume/advance is already in flight for
// the same session. The caller may retry once the first operation settles.
var ErrSessionBusy = errors.New("session busy: another operation is in flight")

// InvariantError reports an attempted mutation that would break the Session
// structural invariants. It is a programming-error class: it must never be
// swallowed, and it is not recoverable by retrying.
type InvariantError struct {
	Op     string // the mutation that was attempted, e.g. "AppendTurn"
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Reason)
}

// invariant builds an InvariantError for the given mutation.
func invariant(op, format string, args ...any) error {
	return &InvariantError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// CapabilityError wraps a failure of a capability agent call. Transient
// failures (network, timeout) are eligible for one retry; permanent failures
// (malformed input) are not. Either way the calling stage absorbs the error
// by substituting a deterministic fallback, so CapabilityError never reaches
// the engine's public API.
type CapabilityError struct {
	Agent     string
	Transient bool
	Err       error
}

func (e *CapabilityError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s capability error from %s: %v", kind, e.Agent, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// NewTransientError marks err as retryable once.
func NewTransientError(agent string, err error) error {
	return &CapabilityError{Agent: agent, Transient: true, Err: err}
}

// NewPermanentError marks err as non-retryable.
func NewPermanentError(agent string, err error) error {
	return &CapabilityError{Agent: agent, Transient: false, Err: err}
}

// IsTransient reports whether err is a capability error eligible for retry.
// Unclassified errors default to transient so that plain network failures
// from an agent implementation still get their single retry.
func IsTransient(err error) bool {
	var ce *CapabilityError
	if errors.As(err, &ce) {
		return ce.Transient
	}
	return true
}
