// Package provider defines the inference tier set and the error taxonomy
// shared by every model invoker.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a provider failure. The escalation controller keys its
// fallback policy off the presence of a *Error, not off individual kinds, but
// kinds are logged and surfaced for diagnostics.
type ErrorKind string

const (
	KindRateLimited       ErrorKind = "rate_limited"
	KindTimeout           ErrorKind = "timeout"
	KindUnavailable       ErrorKind = "unavailable"
	KindMalformedResponse ErrorKind = "malformed_response"
)

// Error is a hard failure from one provider invocation.
type Error struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified provider error.
func NewError(providerName string, kind ErrorKind, err error) *Error {
	return &Error{Provider: providerName, Kind: kind, Err: err}
}

// Classify maps transport-level failures onto the taxonomy: context
// expiry/cancellation and net timeouts become KindTimeout, everything else
// network-shaped becomes KindUnavailable.
func Classify(providerName string, err error) *Error {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewError(providerName, KindTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(providerName, KindTimeout, err)
	}
	return NewError(providerName, KindUnavailable, err)
}
