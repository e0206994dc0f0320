package builtin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"bitebot/internal/agent/ports"
)

type restaurantDetails struct {
	client *apiClient
}

// NewRestaurantDetails returns the restaurant detail lookup tool.
func NewRestaurantDetails(client *apiClient) ports.ToolExecutor {
	return &restaurantDetails{client: client}
}

func (t *restaurantDetails) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{
		Name:     "get_restaurant_details",
		Version:  "1.0.0",
		Category: "restaurant",
		Tags:     []string{"details", "lookup"},
		ReadOnly: true,
	}
}

func (t *restaurantDetails) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "get_restaurant_details",
		Description: "Get full information about one restaurant: address, phone, opening hours, and menu highlights. Accepts the id from search_restaurants or an exact name.",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"restaurant": {
					Type:        "string",
					Description: "Restaurant id or exact name.",
				},
			},
			Required: []string{"restaurant"},
		},
	}
}

type restaurantDetail struct {
	restaurantSummary
	Address        string            `json:"address"`
	Phone          string            `json:"phone"`
	Description    string            `json:"description"`
	Hours          map[string]string `json:"hours"`
	MenuHighlights []string          `json:"menu_highlights"`
}

type detailResponse struct {
	Restaurant restaurantDetail `json:"restaurant"`
}

func (t *restaurantDetails) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	target := stringArg(call.Arguments, "restaurant")
	if target == "" {
		return errorResult(call.ID, fmt.Errorf("restaurant id or name is required"))
	}

	var payload detailResponse
	err := t.client.getJSON(ctx, "/restaurants/"+url.PathEscape(target), nil, &payload)
	if err != nil {
		return errorResult(call.ID, err)
	}

	r := payload.Restaurant
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %s)\n", r.Name, r.Cuisine, r.PriceRange)
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n", r.Description)
	}
	fmt.Fprintf(&b, "Address: %s\nPhone: %s\nRating: %.1f\n", r.Address, r.Phone, r.Rating)
	if len(r.Hours) > 0 {
		b.WriteString("Hours:\n")
		for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
			if hours, ok := r.Hours[day]; ok {
				fmt.Fprintf(&b, "  %s: %s\n", strings.ToUpper(day[:1])+day[1:], hours)
			}
		}
	}
	if len(r.MenuHighlights) > 0 {
		fmt.Fprintf(&b, "Menu highlights: %s\n", strings.Join(r.MenuHighlights, ", "))
	}

	return &ports.ToolResult{
		CallID:  call.ID,
		Content: b.String(),
		Metadata: map[string]any{
			"restaurant_id": r.ID,
			"name":          r.Name,
		},
	}, nil
}
