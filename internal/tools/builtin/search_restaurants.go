package builtin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"bitebot/internal/agent/ports"
)

type searchRestaurants struct {
	client *apiClient
}

// NewSearchRestaurants returns the restaurant search tool.
func NewSearchRestaurants(client *apiClient) ports.ToolExecutor {
	return &searchRestaurants{client: client}
}

func (t *searchRestaurants) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{
		Name:     "search_restaurants",
		Version:  "1.0.0",
		Category: "restaurant",
		Tags:     []string{"search", "discovery"},
		ReadOnly: true,
	}
}

func (t *searchRestaurants) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "search_restaurants",
		Description: "Search for restaurants by cuisine, location, or name. Returns a short list of matches with id, cuisine, and price range.",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"query": {
					Type:        "string",
					Description: "Free-text search: restaurant name, cuisine, or neighborhood.",
				},
				"cuisine": {
					Type:        "string",
					Description: "Cuisine filter, e.g. 'italian' or 'sushi'.",
				},
				"price_range": {
					Type:        "string",
					Description: "Price band filter.",
					Enum:        []any{"$", "$$", "$$$", "$$$$"},
				},
				"limit": {
					Type:        "integer",
					Description: "Maximum number of results (default 5).",
				},
			},
		},
	}
}

type restaurantSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Cuisine    string  `json:"cuisine"`
	Location   string  `json:"location"`
	PriceRange string  `json:"price_range"`
	Rating     float64 `json:"rating"`
}

type searchResponse struct {
	Restaurants []restaurantSummary `json:"restaurants"`
}

func (t *searchRestaurants) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	limit := intArg(call.Arguments, "limit", 5)
	if limit > 20 {
		limit = 20
	}

	query := url.Values{}
	if v := stringArg(call.Arguments, "query"); v != "" {
		query.Set("q", v)
	}
	if v := stringArg(call.Arguments, "cuisine"); v != "" {
		query.Set("cuisine", v)
	}
	if v := stringArg(call.Arguments, "price_range"); v != "" {
		query.Set("price_range", v)
	}

	var payload searchResponse
	if err := t.client.getJSON(ctx, "/restaurants", query, &payload); err != nil {
		return errorResult(call.ID, err)
	}

	if len(payload.Restaurants) == 0 {
		return &ports.ToolResult{CallID: call.ID, Content: "No restaurants matched that search."}, nil
	}
	if limit > len(payload.Restaurants) {
		limit = len(payload.Restaurants)
	}
	top := payload.Restaurants[:limit]

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d restaurants:\n\n", len(top))
	names := make([]string, 0, len(top))
	for i, r := range top {
		names = append(names, r.Name)
		fmt.Fprintf(&b, "%d. %s (id: %s) - %s, %s, %s, rating %.1f\n",
			i+1, r.Name, r.ID, r.Cuisine, r.Location, r.PriceRange, r.Rating)
	}

	return &ports.ToolResult{
		CallID:  call.ID,
		Content: b.String(),
		Metadata: map[string]any{
			"results_count": len(top),
			"names":         names,
		},
	}, nil
}
