package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewSessionID generates a new session identifier with a stable prefix for display.
func NewSessionID() string {
	return newIdentifier("session")
}

// NewRequestID generates an identifier used to correlate one agent turn across logs.
func NewRequestID() string {
	return newIdentifier("req")
}

// NewToolCallID generates an identifier for a synthesized tool call.
func NewToolCallID() string {
	return newIdentifier("call")
}

// NewReservationID generates a fallback booking identifier for platforms
// that do not return one.
func NewReservationID() string {
	return newIdentifier("resv")
}

func newIdentifier(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:20])
}
