// Package observability wires OpenTelemetry metrics with a Prometheus
// exporter. The /metrics route on the main server serves the scrape
// endpoint; a disabled collector degrades to no-ops.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsCollector manages all metrics for the chat service.
type MetricsCollector struct {
	meter metric.Meter

	chatTurns    metric.Int64Counter
	turnLatency  metric.Float64Histogram
	tokensInput  metric.Int64Counter
	tokensOutput metric.Int64Counter

	toolExecutions metric.Int64Counter

	reservations   metric.Int64Counter
	sessionsActive metric.Int64UpDownCounter

	provider *sdkmetric.MeterProvider
}

// MetricsConfig configures the metrics collector.
type MetricsConfig struct {
	Enabled bool
}

// NewMetricsCollector creates a collector. When disabled, every Record
// method is a no-op and Handler still serves an empty registry.
func NewMetricsCollector(config MetricsConfig) (*MetricsCollector, error) {
	if !config.Enabled {
		return &MetricsCollector{}, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter("bitebot")

	chatTurns, err := meter.Int64Counter(
		"bitebot.chat.turns.total",
		metric.WithDescription("Total number of chat turns"),
		metric.WithUnit("{turn}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_turns counter: %w", err)
	}

	turnLatency, err := meter.Float64Histogram(
		"bitebot.chat.turn.latency",
		metric.WithDescription("End-to-end chat turn latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create turn_latency histogram: %w", err)
	}

	tokensInput, err := meter.Int64Counter(
		"bitebot.llm.tokens.input",
		metric.WithDescription("Total input tokens sent to the model"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens_input counter: %w", err)
	}

	tokensOutput, err := meter.Int64Counter(
		"bitebot.llm.tokens.output",
		metric.WithDescription("Total output tokens from the model"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens_output counter: %w", err)
	}

	toolExecutions, err := meter.Int64Counter(
		"bitebot.tool.executions.total",
		metric.WithDescription("Total number of tool executions"),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_executions counter: %w", err)
	}

	reservations, err := meter.Int64Counter(
		"bitebot.reservations.total",
		metric.WithDescription("Total reservations persisted"),
		metric.WithUnit("{reservation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservations counter: %w", err)
	}

	sessionsActive, err := meter.Int64UpDownCounter(
		"bitebot.sessions.active",
		metric.WithDescription("Number of live sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions_active gauge: %w", err)
	}

	return &MetricsCollector{
		meter:          meter,
		chatTurns:      chatTurns,
		turnLatency:    turnLatency,
		tokensInput:    tokensInput,
		tokensOutput:   tokensOutput,
		toolExecutions: toolExecutions,
		reservations:   reservations,
		sessionsActive: sessionsActive,
		provider:       provider,
	}, nil
}

// Handler returns the Prometheus scrape handler.
func (m *MetricsCollector) Handler() http.Handler {
	return promclient.Handler()
}

// Shutdown flushes the meter provider.
func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

// RecordTurn records one chat turn with its outcome and token usage.
func (m *MetricsCollector) RecordTurn(ctx context.Context, status string, latency time.Duration, inputTokens, outputTokens int) {
	if m == nil || m.chatTurns == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.chatTurns.Add(ctx, 1, attrs)
	m.turnLatency.Record(ctx, latency.Seconds(), attrs)
	m.tokensInput.Add(ctx, int64(inputTokens))
	m.tokensOutput.Add(ctx, int64(outputTokens))
}

// RecordToolExecution records a tool execution.
func (m *MetricsCollector) RecordToolExecution(ctx context.Context, toolName string, status string) {
	if m == nil || m.toolExecutions == nil {
		return
	}
	m.toolExecutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool_name", toolName),
		attribute.String("status", status),
	))
}

// RecordReservation records a persisted reservation.
func (m *MetricsCollector) RecordReservation(ctx context.Context) {
	if m == nil || m.reservations == nil {
		return
	}
	m.reservations.Add(ctx, 1)
}

// IncrementActiveSessions bumps the live session gauge.
func (m *MetricsCollector) IncrementActiveSessions(ctx context.Context) {
	if m == nil || m.sessionsActive == nil {
		return
	}
	m.sessionsActive.Add(ctx, 1)
}
