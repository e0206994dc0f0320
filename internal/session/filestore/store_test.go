package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"bitebot/internal/agent/ports"
)

func TestStore_SessionRoundTripsThroughDisk(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	store := New(baseDir)
	ctx := context.Background()

	session, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	session.Messages = append(session.Messages,
		ports.Message{Role: ports.RoleUser, Content: "table for two tonight"},
		ports.Message{Role: ports.RoleAssistant, Content: "Let me check that for you."},
	)
	session.ToolContext["availability"] = map[string]any{"restaurant": "Vetri Cucina"}
	var res ports.Reservation
	if err := json.Unmarshal([]byte(`{"reservation_id":"r1","party_size":2}`), &res); err != nil {
		t.Fatalf("Unmarshal reservation error = %v", err)
	}
	session.AddReservation(res)

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// fresh store, so everything comes back from disk
	reloaded, err := New(baseDir).Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if len(reloaded.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(reloaded.Messages))
	}
	if reloaded.Messages[0].Content != "table for two tonight" {
		t.Fatalf("unexpected first message: %q", reloaded.Messages[0].Content)
	}
	if len(reloaded.Reservations) != 1 || reloaded.Reservations[0].ReservationID != "r1" {
		t.Fatalf("reservation did not round-trip: %+v", reloaded.Reservations)
	}
	if reloaded.ToolContext["availability"] == nil {
		t.Fatal("tool context did not round-trip")
	}
}

func TestStore_GetUnknownSession(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir())
	if _, err := store.Get(context.Background(), "session-doesnotexist"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestStore_RejectsPathTraversalIDs(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir())
	if _, err := store.Get(context.Background(), "../etc/passwd"); err == nil {
		t.Fatal("expected error for traversal id")
	}
	if err := store.Save(context.Background(), &ports.Session{ID: "../escape"}); err == nil {
		t.Fatal("expected error for traversal id on save")
	}
}

func TestStore_ResetClearsEverything(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	store := New(baseDir)
	ctx := context.Background()

	session, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	session.Messages = append(session.Messages, ports.Message{Role: ports.RoleUser, Content: "hi"})
	session.ToolContext["availability"] = "slot"
	var res ports.Reservation
	if err := json.Unmarshal([]byte(`{"reservation_id":"r9"}`), &res); err != nil {
		t.Fatalf("Unmarshal reservation error = %v", err)
	}
	session.AddReservation(res)

	session.Reset()
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(reloaded.Messages) != 0 || len(reloaded.Reservations) != 0 || len(reloaded.ToolContext) != 0 {
		t.Fatalf("reset did not clear state: %+v", reloaded)
	}
}

func TestStore_HealsNilCollections(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	// hand-written file with missing collections
	raw := []byte(`{"id":"session-legacy","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}`)
	if err := os.WriteFile(filepath.Join(baseDir, "session-legacy.json"), raw, 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	session, err := New(baseDir).Get(context.Background(), "session-legacy")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if session.Messages == nil || session.Reservations == nil || session.ToolContext == nil {
		t.Fatal("expected nil collections to be healed")
	}
}
