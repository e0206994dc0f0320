package ports

import (
	"context"
	"encoding/json"
	"time"
)

// SessionStore persists chat sessions
type SessionStore interface {
	// Create creates a new session
	Create(ctx context.Context) (*Session, error)

	// Get retrieves a session by ID
	Get(ctx context.Context, id string) (*Session, error)

	// Save persists session state
	Save(ctx context.Context, session *Session) error
}

// Session aggregates everything that survives across HTTP turns for one
// visitor: the user/assistant transcript, the reservation ledger and the
// cross-turn tool context. There is no cross-session sharing.
type Session struct {
	ID           string         `json:"id"`
	Messages     []Message      `json:"messages"`
	Reservations []Reservation  `json:"reservations"`
	ToolContext  map[string]any `json:"tool_context"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Reset clears transcript, reservations and tool context in one step. There
// is no partial reset.
func (s *Session) Reset() {
	s.Messages = []Message{}
	s.Reservations = []Reservation{}
	s.ToolContext = map[string]any{}
}

// Reservation is the raw booking record produced by the reservation tool.
// The payload is kept verbatim; only reservation_id is interpreted, for
// dedup within a session.
type Reservation struct {
	ReservationID string
	Raw           json.RawMessage
}

// MarshalJSON emits the original payload untouched.
func (r Reservation) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

// UnmarshalJSON keeps the payload verbatim and lifts out reservation_id.
func (r *Reservation) UnmarshalJSON(data []byte) error {
	var probe struct {
		ReservationID string `json:"reservation_id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	r.ReservationID = probe.ReservationID
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// HasReservation reports whether a reservation with the given id already
// exists in the session's ledger.
func (s *Session) HasReservation(id string) bool {
	for _, r := range s.Reservations {
		if r.ReservationID == id {
			return true
		}
	}
	return false
}

// AddReservation appends the reservation unless its id is already present.
// Insertion is append-only; re-delivery of the same id is a no-op.
func (s *Session) AddReservation(res Reservation) bool {
	if s.HasReservation(res.ReservationID) {
		return false
	}
	s.Reservations = append(s.Reservations, res)
	return true
}
