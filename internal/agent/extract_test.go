package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bitebot/internal/agent/ports"
)

const sentinelLine = `IMPORTANT: This reservation data includes: {"reservation_id":"r1","party_size":2}`

func TestExtractReplyLastNonEmptyAssistant(t *testing.T) {
	t.Parallel()

	msgs := []ports.Message{
		{Role: ports.RoleUser, Content: "book a table"},
		{Role: ports.RoleAssistant, Content: "checking now"},
		{Role: ports.RoleTool, Content: "slots found", ToolCallID: "c1"},
		{Role: ports.RoleAssistant, Content: ""},
		{Role: ports.RoleAssistant, Content: "Your table is booked!"},
		{Role: ports.RoleTool, Content: "trailing tool output", ToolCallID: "c2"},
	}

	assert.Equal(t, "Your table is booked!", ExtractReply(msgs))
}

func TestExtractReplyNoneFound(t *testing.T) {
	t.Parallel()

	msgs := []ports.Message{
		{Role: ports.RoleUser, Content: "hi"},
		{Role: ports.RoleAssistant, Content: ""},
	}
	assert.Empty(t, ExtractReply(msgs))
	assert.Empty(t, ExtractReply(nil))
}

func TestExtractReservationFirstToolMatchWins(t *testing.T) {
	t.Parallel()

	msgs := []ports.Message{
		// assistant content must not be scanned even if it carries the marker
		{Role: ports.RoleAssistant, Content: `IMPORTANT: This reservation data includes: {"reservation_id":"bogus"}`},
		{Role: ports.RoleTool, Content: "Booked. " + sentinelLine, ToolCallID: "c1"},
		{Role: ports.RoleTool, Content: `IMPORTANT: This reservation data includes: {"reservation_id":"r2"}`, ToolCallID: "c2"},
	}

	got := ExtractReservation(msgs)
	assert.JSONEq(t, `{"reservation_id":"r1","party_size":2}`, got)
}

func TestExtractReservationAbsent(t *testing.T) {
	t.Parallel()

	msgs := []ports.Message{
		{Role: ports.RoleTool, Content: "no tables available", ToolCallID: "c1"},
	}
	assert.Empty(t, ExtractReservation(msgs))
}

func TestScrubRemovesSentinelLine(t *testing.T) {
	t.Parallel()

	reply := "All set, see you Friday!\n\n" + sentinelLine + "\nEnjoy your meal."
	got := Scrub(reply)
	assert.NotContains(t, got, "IMPORTANT")
	assert.Contains(t, got, "All set, see you Friday!")
	assert.Contains(t, got, "Enjoy your meal.")
}

func TestScrubIsIdempotent(t *testing.T) {
	t.Parallel()

	plain := "Nothing to hide here."
	assert.Equal(t, plain, Scrub(plain))

	once := Scrub("done\n" + sentinelLine)
	assert.Equal(t, once, Scrub(once))
}
