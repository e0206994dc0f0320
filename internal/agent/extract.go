package agent

import (
	"regexp"

	"bitebot/internal/agent/ports"
)

// The reservation tool smuggles its structured result through the free-text
// tool output on a fixed marker line. Extraction reads it off tool messages;
// scrubbing removes it from the user-visible reply.
var (
	reservationPattern = regexp.MustCompile(`IMPORTANT: This reservation data includes: ({.*})`)
	scrubPattern       = regexp.MustCompile(`\n*IMPORTANT: This reservation data includes: \{.*?\}\n*`)
)

// ExtractReply returns the content of the last assistant message with
// non-empty content, scanning in reverse. An empty result means the model
// produced no usable reply and the caller substitutes a fallback.
func ExtractReply(msgs []ports.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == ports.RoleAssistant && msgs[i].Content != "" {
			return msgs[i].Content
		}
	}
	return ""
}

// ExtractReservation scans tool messages for the reservation marker and
// returns the first match's JSON payload, or "" when no tool message carries
// one. At most one reservation is extracted per turn; if several tool
// messages match, the earliest wins.
func ExtractReservation(msgs []ports.Message) string {
	for _, msg := range msgs {
		if msg.Role != ports.RoleTool {
			continue
		}
		if m := reservationPattern.FindStringSubmatch(msg.Content); m != nil {
			return m[1]
		}
	}
	return ""
}

// Scrub strips the reservation marker line, JSON blob included, from a
// reply. Scrubbing text without a marker returns it unchanged, so the
// operation is idempotent.
func Scrub(reply string) string {
	return scrubPattern.ReplaceAllString(reply, "")
}
