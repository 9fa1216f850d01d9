// Package outcome classifies failures of calls to external services.
//
// Every adapter that talks to an external service returns a *Failure on error,
// so callers can switch on Kind instead of inspecting error strings.
package outcome

import (
	"errors"
	"fmt"
)

// Kind is the failure taxonomy shared by all external calls.
type Kind int

const (
	// NotReady: a dependency (identity, store handle) is not initialized. No request was made.
	NotReady Kind = iota + 1
	// Transport: the request never completed.
	Transport
	// Protocol: a response arrived but lacks the expected fields.
	Protocol
	// Rejected: the remote returned a non-success status.
	Rejected
)

func (k Kind) String() string {
	switch k {
	case NotReady:
		return "not_ready"
	case Transport:
		return "transport"
	case Protocol:
		return "protocol"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Failure is the error value returned by external adapters.
type Failure struct {
	Kind    Kind
	Message string
	Status  int
	Cause   error
}

func (f *Failure) Error() string {
	msg := f.Message
	if f.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, f.Status)
	}
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, msg, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, msg)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

func NewNotReady(message string) *Failure {
	return &Failure{Kind: NotReady, Message: message}
}

func NewTransport(message string, cause error) *Failure {
	return &Failure{Kind: Transport, Message: message, Cause: cause}
}

func NewProtocol(message string, cause error) *Failure {
	return &Failure{Kind: Protocol, Message: message, Cause: cause}
}

func NewRejected(status int, message string) *Failure {
	return &Failure{Kind: Rejected, Status: status, Message: message}
}

// KindOf extracts the failure kind from err, or 0 when err is not a *Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}

// Message returns the human-readable part of err suitable for a banner.
func Message(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
