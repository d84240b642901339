package session

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func testRegistry(ttl time.Duration) *Registry {
	return NewRegistry(ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateAndGet(t *testing.T) {
	r := testRegistry(time.Hour)

	s := r.Create("user-1")
	if s.ID == "" {
		t.Fatal("expected a generated session ID")
	}
	if s.Store == nil || s.Controller == nil {
		t.Fatal("session missing store or controller")
	}
	if got := s.Store.Step(); got != 1 {
		t.Errorf("new session starts at step %d, want 1", got)
	}

	got, ok := r.Get(s.ID)
	if !ok || got.ID != s.ID {
		t.Fatalf("Get(%q) = %v, %v", s.ID, got, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get of an unknown ID should fail")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	r := testRegistry(time.Hour)

	a := r.Create("user-1")
	b := r.Create("user-1")

	a.Store.UpdateDescription("project A description")
	if b.Store.CurrentProject() != nil {
		t.Error("edits in one session leaked into another")
	}
}

func TestRemove(t *testing.T) {
	r := testRegistry(time.Hour)
	s := r.Create("user-1")

	r.Remove(s.ID)
	if _, ok := r.Get(s.ID); ok {
		t.Error("removed session still retrievable")
	}
	r.Remove(s.ID) // second remove is a no-op
	if got := r.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	r := testRegistry(50 * time.Millisecond)

	idle := r.Create("user-1")
	idle.touch(time.Now().Add(-time.Minute))

	active := r.Create("user-2")

	removed := r.Sweep()
	if removed != 1 {
		t.Fatalf("Sweep() = %d, want 1", removed)
	}
	if _, ok := r.Get(idle.ID); ok {
		t.Error("idle session survived the sweep")
	}
	if _, ok := r.Get(active.ID); !ok {
		t.Error("active session was swept")
	}
}

func TestGetRefreshesIdleTimer(t *testing.T) {
	r := testRegistry(time.Minute)

	s := r.Create("user-1")
	s.touch(time.Now().Add(-2 * time.Minute))

	// A Get counts as activity, so the next sweep keeps the session.
	if _, ok := r.Get(s.ID); !ok {
		t.Fatal("session should still exist before the sweep")
	}
	if removed := r.Sweep(); removed != 0 {
		t.Errorf("Sweep() = %d, want 0", removed)
	}
}
