package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bitebot/internal/agent/ports"
	biteboterrors "bitebot/internal/errors"
	"bitebot/internal/httpclient"
	"bitebot/internal/utils"
	id "bitebot/internal/utils/id"

	"github.com/kaptinlin/jsonrepair"
)

// Config holds provider connection settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    int // seconds
	Headers    map[string]string
	MaxRetries int
}

// OpenAI API compatible client
type openaiClient struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *utils.Logger
	headers    map[string]string
}

// NewOpenAIClient constructs an LLM client that speaks the OpenAI-compatible
// chat completions API using the provided configuration.
func NewOpenAIClient(model string, config Config) (ports.LLMClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing API key")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}

	timeout := 120 * time.Second
	if config.Timeout > 0 {
		timeout = time.Duration(config.Timeout) * time.Second
	}

	logger := utils.NewComponentLogger("OpenAIClient")

	client := &openaiClient{
		model:      model,
		apiKey:     config.APIKey,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpclient.NewWithCircuitBreaker(timeout, logger, "llm"),
		logger:     logger,
		headers:    config.Headers,
	}

	if config.MaxRetries > 0 {
		return newRetryClient(client, config.MaxRetries), nil
	}
	return client, nil
}

func (c *openaiClient) Model() string {
	return c.model
}

// Complete sends a chat completion request and decodes the response.
func (c *openaiClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	requestID := extractRequestID(req.Metadata)
	if requestID == "" {
		requestID = id.NewRequestID()
	}
	prefix := fmt.Sprintf("[%s] ", requestID)

	oaiReq := map[string]any{
		"model":    c.model,
		"messages": c.convertMessages(req.Messages),
	}
	if req.Temperature > 0 {
		oaiReq["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		oaiReq["max_tokens"] = req.MaxTokens
	}
	if len(req.Tools) > 0 {
		oaiReq["tools"] = c.convertTools(req.Tools)
		oaiReq["tool_choice"] = "auto"
	}

	body, err := json.Marshal(oaiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	c.logger.Debug("%sPOST %s/chat/completions model=%s messages=%d tools=%d",
		prefix, c.baseURL, c.model, len(req.Messages), len(req.Tools))

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := httpclient.ReadBody(resp.Body, httpclient.MaxCompletionBody)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, mapHTTPError(resp.StatusCode, respBody)
	}

	var oaiResp struct {
		Choices []struct {
			Message struct {
				Content   string `json:"content"`
				ToolCalls []struct {
					ID       string `json:"id"`
					Type     string `json:"type"`
					Function struct {
						Name      string `json:"name"`
						Arguments string `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
		Error *struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		c.logger.Debug("%sFailed to decode response: %v", prefix, err)
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if oaiResp.Error != nil && oaiResp.Error.Message != "" {
		errMsg := oaiResp.Error.Message
		if oaiResp.Error.Type != "" {
			errMsg = fmt.Sprintf("%s: %s", oaiResp.Error.Type, oaiResp.Error.Message)
		}
		return nil, mapHTTPError(resp.StatusCode, []byte(errMsg))
	}

	if len(oaiResp.Choices) == 0 {
		return nil, biteboterrors.NewTransientError(errors.New("no choices in response"),
			"LLM returned an empty response. Please retry.")
	}

	result := &ports.CompletionResponse{
		Content:    oaiResp.Choices[0].Message.Content,
		StopReason: oaiResp.Choices[0].FinishReason,
		Usage: ports.TokenUsage{
			PromptTokens:     oaiResp.Usage.PromptTokens,
			CompletionTokens: oaiResp.Usage.CompletionTokens,
			TotalTokens:      oaiResp.Usage.TotalTokens,
		},
	}

	for _, tc := range oaiResp.Choices[0].Message.ToolCalls {
		args, err := parseToolArguments(tc.Function.Arguments)
		if err != nil {
			c.logger.Warn("%sDropping tool call %s: unparseable arguments: %v", prefix, tc.Function.Name, err)
			continue
		}
		callID := tc.ID
		if callID == "" {
			callID = id.NewToolCallID()
		}
		result.ToolCalls = append(result.ToolCalls, ports.ToolCall{
			ID:        callID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	c.logger.Debug("%sstop=%s content_len=%d tool_calls=%d tokens=%d+%d",
		prefix, result.StopReason, len(result.Content), len(result.ToolCalls),
		result.Usage.PromptTokens, result.Usage.CompletionTokens)

	return result, nil
}

// parseToolArguments decodes LLM-provided tool call arguments. Models
// occasionally emit slightly malformed JSON; jsonrepair gets a chance before
// the call is dropped.
func parseToolArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, nil
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, fmt.Errorf("repair arguments: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return nil, fmt.Errorf("parse repaired arguments: %w", err)
	}
	return args, nil
}

func (c *openaiClient) convertMessages(messages []ports.Message) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		m := map[string]any{
			"role":    msg.Role,
			"content": msg.Content,
		}
		if msg.Role == ports.RoleTool {
			if msg.Name != "" {
				m["name"] = msg.Name
			}
			if msg.ToolCallID != "" {
				m["tool_call_id"] = msg.ToolCallID
			}
		}
		if len(msg.ToolCalls) > 0 {
			calls := make([]map[string]any, 0, len(msg.ToolCalls))
			for _, tc := range msg.ToolCalls {
				argsJSON, err := json.Marshal(tc.Arguments)
				if err != nil {
					argsJSON = []byte("{}")
				}
				calls = append(calls, map[string]any{
					"id":   tc.ID,
					"type": "function",
					"function": map[string]any{
						"name":      tc.Name,
						"arguments": string(argsJSON),
					},
				})
			}
			m["tool_calls"] = calls
		}
		out = append(out, m)
	}
	return out
}

func (c *openaiClient) convertTools(tools []ports.ToolDefinition) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		out = append(out, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        tool.Name,
				"description": tool.Description,
				"parameters":  tool.Parameters,
			},
		})
	}
	return out
}

func mapHTTPError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	base := fmt.Errorf("llm api status %d: %s", status, msg)
	if biteboterrors.IsTransientHTTPStatus(status) {
		return &biteboterrors.TransientError{Err: base, StatusCode: status}
	}
	return &biteboterrors.PermanentError{Err: base, StatusCode: status}
}

func extractRequestID(metadata map[string]any) string {
	if metadata == nil {
		return ""
	}
	if v, ok := metadata["request_id"].(string); ok {
		return v
	}
	return ""
}
