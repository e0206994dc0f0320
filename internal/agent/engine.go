package agent

import (
	"context"
	"fmt"

	"bitebot/internal/agent/ports"
	"bitebot/internal/utils"
)

// maxToolIterations bounds the model/tool loop within a single turn. The
// reservation flow never legitimately needs more than a handful of calls.
const maxToolIterations = 8

const defaultTemperature = 0.5

// Engine drives the tool-calling loop for one turn: send the transcript to
// the model, execute any requested tools, feed results back, repeat until the
// model answers in plain text or the iteration budget runs out.
type Engine struct {
	llmClient   ports.LLMClient
	registry    ports.ToolRegistry
	temperature float64
	metrics     ToolMetrics
	logger      *utils.Logger
}

// ToolMetrics receives per-tool execution outcomes. Nil disables recording.
type ToolMetrics interface {
	RecordToolExecution(ctx context.Context, toolName string, status string)
}

// NewEngine creates an engine over the given model client and tool registry.
func NewEngine(llmClient ports.LLMClient, registry ports.ToolRegistry) *Engine {
	return &Engine{
		llmClient:   llmClient,
		registry:    registry,
		temperature: defaultTemperature,
		logger:      utils.NewComponentLogger("Engine"),
	}
}

// Run executes the loop and returns the full message sequence: the input
// messages echoed verbatim, followed by every assistant and tool message the
// loop produced. Callers rely on that echo to separate new messages from old.
func (e *Engine) Run(ctx context.Context, msgs []ports.Message, requestID string) ([]ports.Message, ports.TokenUsage, error) {
	working := make([]ports.Message, len(msgs))
	copy(working, msgs)

	tools := e.registry.List()
	var usage ports.TokenUsage

	for iter := 0; iter < maxToolIterations; iter++ {
		resp, err := e.llmClient.Complete(ctx, ports.CompletionRequest{
			Messages:    working,
			Tools:       tools,
			Temperature: e.temperature,
			Metadata:    map[string]any{"request_id": requestID},
		})
		if err != nil {
			return nil, usage, fmt.Errorf("completion failed (iteration %d): %w", iter, err)
		}
		usage.Add(resp.Usage)

		working = append(working, ports.Message{
			Role:      ports.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		if len(resp.ToolCalls) == 0 {
			return working, usage, nil
		}

		for _, call := range resp.ToolCalls {
			working = append(working, e.executeCall(ctx, call))
		}
	}

	e.logger.Warn("Tool loop hit iteration limit (%d), returning partial result [%s]", maxToolIterations, requestID)
	return working, usage, nil
}

func (e *Engine) executeCall(ctx context.Context, call ports.ToolCall) ports.Message {
	e.logger.Info("Executing tool: %s (call %s)", call.Name, call.ID)

	result, err := e.registry.Execute(ctx, call)
	content := ""
	status := "ok"
	switch {
	case err != nil:
		// The model sees the failure as tool output and can recover or
		// apologize; the turn itself keeps going.
		e.logger.Warn("Tool %s failed: %v", call.Name, err)
		content = fmt.Sprintf("Error: %v", err)
		status = "error"
	case result.Error != nil:
		e.logger.Warn("Tool %s returned error: %v", call.Name, result.Error)
		content = fmt.Sprintf("Error: %v", result.Error)
		status = "error"
	default:
		content = result.Content
	}
	if e.metrics != nil {
		e.metrics.RecordToolExecution(ctx, call.Name, status)
	}

	return ports.Message{
		Role:       ports.RoleTool,
		Content:    content,
		Name:       call.Name,
		ToolCallID: call.ID,
	}
}
