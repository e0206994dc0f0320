package builtin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitebot/internal/agent/ports"
	"bitebot/internal/toolctx"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *apiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newAPIClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func ctxWithStore(store *toolctx.Store) context.Context {
	return toolctx.NewContext(context.Background(), store)
}

func TestSearchRestaurantsFormatsResults(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/restaurants", r.URL.Path)
		assert.Equal(t, "italian", r.URL.Query().Get("cuisine"))
		_ = json.NewEncoder(w).Encode(searchResponse{Restaurants: []restaurantSummary{
			{ID: "r-001", Name: "Vetri Cucina", Cuisine: "Italian", Location: "Downtown", PriceRange: "$$$", Rating: 4.7},
			{ID: "r-002", Name: "Osteria", Cuisine: "Italian", Location: "Midtown", PriceRange: "$$", Rating: 4.4},
		}})
	})

	tool := NewSearchRestaurants(client)
	result, err := tool.Execute(context.Background(), ports.ToolCall{
		ID:        "c1",
		Name:      "search_restaurants",
		Arguments: map[string]any{"cuisine": "italian"},
	})
	require.NoError(t, err)
	require.Nil(t, result.Error)
	assert.Contains(t, result.Content, "Vetri Cucina")
	assert.Contains(t, result.Content, "r-001")
	assert.Equal(t, 2, result.Metadata["results_count"])
}

func TestSearchRestaurantsEmpty(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{})
	})

	result, err := NewSearchRestaurants(client).Execute(context.Background(), ports.ToolCall{ID: "c1"})
	require.NoError(t, err)
	assert.Contains(t, result.Content, "No restaurants matched")
}

func TestRestaurantDetails(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/restaurants/r-001", r.URL.Path)
		_ = json.NewEncoder(w).Encode(detailResponse{Restaurant: restaurantDetail{
			restaurantSummary: restaurantSummary{ID: "r-001", Name: "Vetri Cucina", Cuisine: "Italian", PriceRange: "$$$", Rating: 4.7},
			Address:           "1312 Spruce St",
			Phone:             "215-732-3478",
			Hours:             map[string]string{"friday": "17:00-23:00"},
			MenuHighlights:    []string{"spinach gnocchi", "rabbit casalinga"},
		}})
	})

	result, err := NewRestaurantDetails(client).Execute(context.Background(), ports.ToolCall{
		ID:        "c1",
		Arguments: map[string]any{"restaurant": "r-001"},
	})
	require.NoError(t, err)
	require.Nil(t, result.Error)
	assert.Contains(t, result.Content, "1312 Spruce St")
	assert.Contains(t, result.Content, "Friday: 17:00-23:00")
	assert.Contains(t, result.Content, "spinach gnocchi")
}

func TestCheckAvailabilityStoresSlot(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/availability", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Vetri Cucina", q.Get("restaurant"))
		assert.Equal(t, "19:00", q.Get("time"))
		assert.Equal(t, "4", q.Get("party_size"))
		_ = json.NewEncoder(w).Encode(availabilityResponse{Available: true})
	})

	tool := &checkAvailability{client: client, now: func() time.Time { return refNow }}
	store := toolctx.NewStore()

	result, err := tool.Execute(ctxWithStore(store), ports.ToolCall{
		ID: "c1",
		Arguments: map[string]any{
			"restaurant": "Vetri Cucina",
			"date":       "today",
			"time":       "7pm",
			"party_size": float64(4),
		},
	})
	require.NoError(t, err)
	require.Nil(t, result.Error)
	assert.Contains(t, result.Content, "Available")

	slot, ok := store.Get(toolctx.AvailabilityKey).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Vetri Cucina", slot["restaurant"])
	assert.Equal(t, "2026-06-01", slot["date"])
	assert.Equal(t, "19:00", slot["time"])
	assert.Equal(t, 4, slot["party_size"])
}

func TestCheckAvailabilityNoTableListsAlternatives(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(availabilityResponse{
			Available: false,
			Slots: []struct {
				Time      string `json:"time"`
				TableSize int    `json:"table_size"`
			}{{Time: "21:00", TableSize: 4}},
		})
	})

	tool := &checkAvailability{client: client, now: func() time.Time { return refNow }}
	store := toolctx.NewStore()

	result, err := tool.Execute(ctxWithStore(store), ports.ToolCall{
		ID:        "c1",
		Arguments: map[string]any{"restaurant": "Vetri Cucina", "date": "today", "time": "7pm"},
	})
	require.NoError(t, err)
	assert.Contains(t, result.Content, "No table")
	assert.Contains(t, result.Content, "21:00")
	assert.Nil(t, store.Get(toolctx.AvailabilityKey))
}

func TestMakeReservationHappyPath(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/reservations", r.URL.Path)

		var req reservationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Sarah Johnson", req.CustomerName)
		assert.Equal(t, "Vetri Cucina", req.Restaurant)

		_ = json.NewEncoder(w).Encode(reservationRecord{
			ReservationID: "resv-abc123",
			Restaurant:    req.Restaurant,
			Date:          req.Date,
			Time:          req.Time,
			PartySize:     req.PartySize,
			CustomerName:  req.CustomerName,
		})
	})

	store := toolctx.NewStore()
	store.Set(toolctx.AvailabilityKey, map[string]any{
		"restaurant": "Vetri Cucina",
		"date":       "2026-06-01",
		"time":       "19:00",
		"party_size": 4,
	})

	result, err := NewMakeReservation(client).Execute(ctxWithStore(store), ports.ToolCall{
		ID:        "c1",
		Arguments: map[string]any{"customer_name": "Sarah Johnson"},
	})
	require.NoError(t, err)
	require.Nil(t, result.Error)

	assert.Contains(t, result.Content, "Reservation confirmed")
	assert.Contains(t, result.Content, reservationMarker)
	assert.Equal(t, "resv-abc123", result.Metadata["reservation_id"])

	// slot is single-use
	assert.Nil(t, store.Get(toolctx.AvailabilityKey))
}

func TestMakeReservationRejectsPlaceholderName(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call expected")
	})

	store := toolctx.NewStore()
	store.Set(toolctx.AvailabilityKey, map[string]any{"restaurant": "Vetri Cucina"})

	result, err := NewMakeReservation(client).Execute(ctxWithStore(store), ports.ToolCall{
		ID:        "c1",
		Arguments: map[string]any{"customer_name": "Guest"},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Error)
	assert.Contains(t, result.Content, "placeholder")
}

func TestMakeReservationRequiresAvailabilityCheck(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call expected")
	})

	result, err := NewMakeReservation(client).Execute(ctxWithStore(toolctx.NewStore()), ports.ToolCall{
		ID:        "c1",
		Arguments: map[string]any{"customer_name": "Sarah Johnson"},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Error)
	assert.Contains(t, result.Content, "check_availability")
}

func TestToolErrorOnAPIFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	result, err := NewSearchRestaurants(client).Execute(context.Background(), ports.ToolCall{ID: "c1"})
	require.NoError(t, err)
	require.NotNil(t, result.Error)
	assert.Contains(t, result.Content, "502")
}
