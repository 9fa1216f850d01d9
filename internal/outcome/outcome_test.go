package outcome

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewTransport("contact relay unreachable", cause)

	assert.Equal(t, "transport: contact relay unreachable: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)

	rejected := NewRejected(422, "email is invalid")
	assert.Equal(t, "rejected: email is invalid (status 422)", rejected.Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", NewProtocol("no content received", nil))

	assert.Equal(t, Protocol, KindOf(wrapped))
	assert.Equal(t, NotReady, KindOf(NewNotReady("application not ready")))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "no content received", Message(fmt.Errorf("x: %w", NewProtocol("no content received", nil))))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Equal(t, "", Message(nil))
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{
		NotReady:  "not_ready",
		Transport: "transport",
		Protocol:  "protocol",
		Rejected:  "rejected",
		Kind(99):  "unknown",
	} {
		assert.Equal(t, want, k.String())
	}
}
