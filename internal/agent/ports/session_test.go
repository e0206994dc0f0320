package ports

import (
	"encoding/json"
	"testing"
)

func TestAddReservationDedupsByID(t *testing.T) {
	t.Parallel()

	session := &Session{}

	var first, duplicate, other Reservation
	mustUnmarshal(t, `{"reservation_id":"r1","party_size":2}`, &first)
	mustUnmarshal(t, `{"reservation_id":"r1","party_size":6}`, &duplicate)
	mustUnmarshal(t, `{"reservation_id":"r2","party_size":4}`, &other)

	if !session.AddReservation(first) {
		t.Fatal("first add should succeed")
	}
	if session.AddReservation(duplicate) {
		t.Fatal("duplicate id should be a no-op")
	}
	if !session.AddReservation(other) {
		t.Fatal("distinct id should be appended")
	}
	if len(session.Reservations) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(session.Reservations))
	}

	// first record wins; the duplicate's payload must not replace it
	var kept map[string]any
	if err := json.Unmarshal(session.Reservations[0].Raw, &kept); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if kept["party_size"].(float64) != 2 {
		t.Fatalf("duplicate overwrote original payload: %v", kept)
	}
}

func TestReservationMarshalKeepsPayloadVerbatim(t *testing.T) {
	t.Parallel()

	raw := `{"reservation_id":"r1","note":"window seat","party_size":2}`
	var res Reservation
	mustUnmarshal(t, raw, &res)

	out, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(out) != raw {
		t.Fatalf("payload changed: %s", out)
	}
}

func TestReservationUnmarshalRejectsNonObject(t *testing.T) {
	t.Parallel()

	var res Reservation
	if err := json.Unmarshal([]byte(`"just a string"`), &res); err == nil {
		t.Fatal("expected error for non-object payload")
	}
}

func mustUnmarshal(t *testing.T, raw string, res *Reservation) {
	t.Helper()
	if err := json.Unmarshal([]byte(raw), res); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", raw, err)
	}
}
