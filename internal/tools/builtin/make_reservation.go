package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bitebot/internal/agent/ports"
	"bitebot/internal/toolctx"
	"bitebot/internal/utils/id"
)

// reservationMarker prefixes the JSON payload embedded in this tool's
// output. The HTTP layer scrapes it back out to persist the reservation and
// scrubs it from the user-visible reply, so the exact text is load-bearing.
const reservationMarker = "IMPORTANT: This reservation data includes: "

// placeholderNames the model is forbidden from booking under. Rejecting them
// here backstops the prompt rule.
var placeholderNames = map[string]bool{
	"guest":    true,
	"user":     true,
	"customer": true,
}

type makeReservation struct {
	client *apiClient
}

// NewMakeReservation returns the booking tool. It refuses to book without a
// prior availability check in the tool context.
func NewMakeReservation(client *apiClient) ports.ToolExecutor {
	return &makeReservation{client: client}
}

func (t *makeReservation) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{
		Name:     "make_reservation",
		Version:  "1.0.0",
		Category: "restaurant",
		Tags:     []string{"booking", "reservation"},
	}
}

func (t *makeReservation) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "make_reservation",
		Description: "Book the table found by the most recent check_availability call. Requires the customer's real name; only call after the user has explicitly confirmed.",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"customer_name": {
					Type:        "string",
					Description: "The customer's actual name for the booking.",
				},
			},
			Required: []string{"customer_name"},
		},
	}
}

type reservationRequest struct {
	Restaurant   string `json:"restaurant"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	PartySize    int    `json:"party_size"`
	CustomerName string `json:"customer_name"`
}

type reservationRecord struct {
	ReservationID string `json:"reservation_id"`
	Restaurant    string `json:"restaurant"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PartySize     int    `json:"party_size"`
	CustomerName  string `json:"customer_name"`
}

func (t *makeReservation) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	name := stringArg(call.Arguments, "customer_name")
	if name == "" {
		return errorResult(call.ID, fmt.Errorf("customer_name is required; ask the user for their name"))
	}
	if placeholderNames[strings.ToLower(name)] {
		return errorResult(call.ID, fmt.Errorf("%q is a placeholder, not a real name; ask the user for their name", name))
	}

	store := toolctx.FromContext(ctx)
	var checked map[string]any
	if store != nil {
		checked, _ = store.Get(toolctx.AvailabilityKey).(map[string]any)
	}
	if checked == nil {
		return errorResult(call.ID, fmt.Errorf("no availability has been checked; call check_availability first"))
	}

	req := reservationRequest{
		Restaurant:   asString(checked["restaurant"]),
		Date:         asString(checked["date"]),
		Time:         asString(checked["time"]),
		PartySize:    asInt(checked["party_size"], 2),
		CustomerName: name,
	}

	var record reservationRecord
	if err := t.client.postJSON(ctx, "/reservations", req, &record); err != nil {
		return errorResult(call.ID, err)
	}
	if record.ReservationID == "" {
		record.ReservationID = id.NewReservationID()
	}
	if record.Restaurant == "" {
		record.Restaurant = req.Restaurant
		record.Date = req.Date
		record.Time = req.Time
		record.PartySize = req.PartySize
		record.CustomerName = req.CustomerName
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errorResult(call.ID, fmt.Errorf("encode reservation: %w", err))
	}

	// Booked slots are single-use; clear the slot so a repeated call cannot
	// double-book without a fresh availability check.
	if store != nil {
		store.Set(toolctx.AvailabilityKey, nil)
	}

	content := fmt.Sprintf(
		"Reservation confirmed for %s at %s on %s at %s, party of %d. Confirmation id: %s.\n%s%s",
		record.CustomerName, record.Restaurant, record.Date, record.Time,
		record.PartySize, record.ReservationID, reservationMarker, payload,
	)

	return &ports.ToolResult{
		CallID:  call.ID,
		Content: content,
		Metadata: map[string]any{
			"reservation_id": record.ReservationID,
		},
	}, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return fallback
}
