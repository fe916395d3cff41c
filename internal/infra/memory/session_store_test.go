package memory

import (
	"testing"

	"exam-drill-service/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	created := 0
	create := func(id string) *app.Session {
		created++
		return app.NewSession(id, app.SessionOptions{})
	}

	session := store.GetOrCreate("s-1", create)
	if session == nil || session.ID() != "s-1" {
		t.Fatalf("expected session s-1, got %v", session)
	}
	if again := store.GetOrCreate("s-1", create); again != session || created != 1 {
		t.Fatalf("expected existing session reused, created=%d", created)
	}
	if _, ok := store.Get("s-1"); !ok {
		t.Fatalf("expected session present")
	}

	store.DeleteIfEmpty("s-1")
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected session removed when empty")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}
