package agent

import (
	"fmt"

	"bitebot/internal/agent/ports"
)

// ConvertTranscript validates a persisted transcript before it is sent to the
// model. Tool messages must carry a tool call id; any role outside the known
// set fails the turn rather than being dropped silently, since a skipped
// message would desynchronize the echo-suffix contract in NewMessages.
func ConvertTranscript(transcript []ports.Message) ([]ports.Message, error) {
	out := make([]ports.Message, 0, len(transcript))
	for i, msg := range transcript {
		switch msg.Role {
		case ports.RoleUser, ports.RoleAssistant, ports.RoleSystem:
			out = append(out, ports.Message{Role: msg.Role, Content: msg.Content})
		case ports.RoleTool:
			out = append(out, ports.Message{
				Role:       ports.RoleTool,
				Content:    msg.Content,
				Name:       msg.Name,
				ToolCallID: msg.ToolCallID,
			})
		default:
			return nil, fmt.Errorf("transcript message %d: unknown role %q", i, msg.Role)
		}
	}
	return out, nil
}

// NewMessages picks the messages the model run appended beyond what was sent
// in. The run is expected to echo the input prefix verbatim; when it does, the
// result is exactly full[sent:]. If the echo invariant is violated the
// function falls back to anchoring on the last input message and returns
// whatever follows its final occurrence, or the whole sequence when no anchor
// is found.
func NewMessages(full []ports.Message, sent []ports.Message) []ports.Message {
	if len(full) >= len(sent) && echoesPrefix(full, sent) {
		return full[len(sent):]
	}
	if len(sent) == 0 {
		return full
	}
	anchor := sent[len(sent)-1]
	for i := len(full) - 1; i >= 0; i-- {
		if full[i].Role == anchor.Role && full[i].Content == anchor.Content {
			return full[i+1:]
		}
	}
	return full
}

func echoesPrefix(full, sent []ports.Message) bool {
	for i := range sent {
		if full[i].Role != sent[i].Role || full[i].Content != sent[i].Content {
			return false
		}
	}
	return true
}
