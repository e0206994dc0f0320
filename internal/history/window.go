// Package history bounds the conversation transcript sent to the LLM.
//
// Only the most recent window of messages is forwarded on each turn; any
// state that must survive beyond the window lives in the tool context
// instead. Truncation never touches persisted session state.
package history

import (
	"bitebot/internal/agent/ports"
	"bitebot/internal/token"
)

// DefaultWindowSize is roughly six user/assistant exchanges.
const DefaultWindowSize = 12

// Window returns at most the last size entries of msgs in original order.
// Short or empty transcripts are returned as-is. The returned slice aliases
// msgs; callers must not mutate it.
func Window(msgs []ports.Message, size int) []ports.Message {
	if size <= 0 {
		size = DefaultWindowSize
	}
	if len(msgs) <= size {
		return msgs
	}
	return msgs[len(msgs)-size:]
}

// TokenCount estimates the token cost of a message window, for logging.
func TokenCount(msgs []ports.Message) int {
	total := 0
	for _, m := range msgs {
		total += token.Count(m.Content)
	}
	return total
}
