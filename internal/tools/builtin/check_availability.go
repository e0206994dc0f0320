package builtin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bitebot/internal/agent/ports"
	"bitebot/internal/toolctx"
)

type checkAvailability struct {
	client *apiClient
	now    func() time.Time
}

// NewCheckAvailability returns the availability tool. On success it records
// the checked slot in the turn's tool context so a later make_reservation
// call can book it, even on a different turn.
func NewCheckAvailability(client *apiClient) ports.ToolExecutor {
	return &checkAvailability{client: client, now: time.Now}
}

func (t *checkAvailability) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{
		Name:     "check_availability",
		Version:  "1.0.0",
		Category: "restaurant",
		Tags:     []string{"availability", "booking"},
	}
}

func (t *checkAvailability) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "check_availability",
		Description: "Check opening hours or table availability for a restaurant. Pass date and time exactly as the user phrased them; all natural formats are understood.",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"restaurant": {
					Type:        "string",
					Description: "Restaurant id or name.",
				},
				"date": {
					Type:        "string",
					Description: "Date as the user said it: 'today', 'tomorrow', 'next Friday', 'February 15th'.",
				},
				"time": {
					Type:        "string",
					Description: "Time as the user said it: '7pm', '6:30', 'evening'.",
				},
				"party_size": {
					Type:        "integer",
					Description: "Number of guests (default 2).",
				},
			},
			Required: []string{"restaurant"},
		},
	}
}

type availabilityResponse struct {
	Available bool   `json:"available"`
	Hours     string `json:"hours"`
	Slots     []struct {
		Time      string `json:"time"`
		TableSize int    `json:"table_size"`
	} `json:"slots"`
}

func (t *checkAvailability) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	restaurant := stringArg(call.Arguments, "restaurant")
	if restaurant == "" {
		return errorResult(call.ID, fmt.Errorf("restaurant id or name is required"))
	}
	partySize := intArg(call.Arguments, "party_size", 2)

	date, err := parseDate(stringArg(call.Arguments, "date"), t.now())
	if err != nil {
		return errorResult(call.ID, err)
	}
	slotTime, err := parseTime(stringArg(call.Arguments, "time"))
	if err != nil {
		return errorResult(call.ID, err)
	}
	dateStr := date.Format("2006-01-02")

	query := url.Values{}
	query.Set("restaurant", restaurant)
	query.Set("date", dateStr)
	query.Set("time", slotTime)
	query.Set("party_size", strconv.Itoa(partySize))

	var payload availabilityResponse
	if err := t.client.getJSON(ctx, "/availability", query, &payload); err != nil {
		return errorResult(call.ID, err)
	}

	if !payload.Available {
		content := fmt.Sprintf("No table for %d at %s on %s %s.", partySize, restaurant, dateStr, slotTime)
		if payload.Hours != "" {
			content += " Hours that day: " + payload.Hours
		}
		if len(payload.Slots) > 0 {
			alternatives := make([]string, 0, len(payload.Slots))
			for _, s := range payload.Slots {
				alternatives = append(alternatives, s.Time)
			}
			content += " Alternative times: " + strings.Join(alternatives, ", ")
		}
		return &ports.ToolResult{CallID: call.ID, Content: content}, nil
	}

	// Remember what was checked so make_reservation can book exactly this
	// slot once the user confirms, possibly several turns later.
	if store := toolctx.FromContext(ctx); store != nil {
		store.Set(toolctx.AvailabilityKey, map[string]any{
			"restaurant": restaurant,
			"date":       dateStr,
			"time":       slotTime,
			"party_size": partySize,
		})
	}

	return &ports.ToolResult{
		CallID: call.ID,
		Content: fmt.Sprintf("Available: %s has a table for %d on %s at %s. Ask the user to confirm before booking.",
			restaurant, partySize, dateStr, slotTime),
		Metadata: map[string]any{
			"restaurant": restaurant,
			"date":       dateStr,
			"time":       slotTime,
		},
	}, nil
}
