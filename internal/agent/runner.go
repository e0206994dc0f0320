package agent

import (
	"context"

	"bitebot/internal/agent/ports"
	"bitebot/internal/toolctx"
	"bitebot/internal/utils"
	"bitebot/internal/utils/id"
)

// TurnInput carries everything one turn needs: the trimmed transcript window
// with the new user message already appended, and the session's persisted
// tool context snapshot.
type TurnInput struct {
	Messages    []ports.Message
	ToolContext map[string]any
}

// TurnResult is what a turn hands back to the HTTP layer. Reply may be empty
// when the model produced no usable assistant message; the caller substitutes
// FallbackReply. ReservationJSON is "" unless a booking completed this turn.
type TurnResult struct {
	Reply           string
	ToolContext     map[string]any
	ReservationJSON string
	Usage           ports.TokenUsage
}

// Runner is the single shared agent instance. It is stateless across turns;
// all per-turn state lives in the TurnInput and in a store created per call,
// so concurrent requests never share mutable agent state.
type Runner struct {
	engine *Engine
	logger *utils.Logger
}

// NewRunner wires a turn runner over the model client and tool registry.
func NewRunner(llmClient ports.LLMClient, registry ports.ToolRegistry) *Runner {
	return &Runner{
		engine: NewEngine(llmClient, registry),
		logger: utils.NewComponentLogger("Runner"),
	}
}

// WithMetrics attaches a recorder for tool execution outcomes.
func (r *Runner) WithMetrics(m ToolMetrics) *Runner {
	r.engine.metrics = m
	return r
}

// Run executes one conversational turn.
func (r *Runner) Run(ctx context.Context, in TurnInput) (*TurnResult, error) {
	store := toolctx.NewStore()
	store.Restore(in.ToolContext)
	ctx = toolctx.NewContext(ctx, store)

	transcript, err := ConvertTranscript(in.Messages)
	if err != nil {
		return nil, err
	}

	sent := make([]ports.Message, 0, len(transcript)+1)
	sent = append(sent, ports.Message{Role: ports.RoleSystem, Content: SystemPrompt})
	sent = append(sent, transcript...)

	requestID := id.NewRequestID()
	r.logger.Info("Invoking model with %d messages [%s]", len(sent), requestID)

	full, usage, err := r.engine.Run(ctx, sent, requestID)
	if err != nil {
		return nil, err
	}

	fresh := NewMessages(full, sent)
	r.logger.Info("Model returned %d messages, %d new [%s]", len(full), len(fresh), requestID)

	reply := ExtractReply(full)
	if reply == "" {
		r.logger.Warn("No assistant reply in model output [%s]", requestID)
	}

	reservation := ExtractReservation(fresh)
	if reservation != "" {
		r.logger.Info("Reservation payload extracted from tool output [%s]", requestID)
	}

	return &TurnResult{
		Reply:           reply,
		ToolContext:     store.Snapshot(),
		ReservationJSON: reservation,
		Usage:           usage,
	}, nil
}
