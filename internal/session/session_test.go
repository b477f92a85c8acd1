package session

import (
	"context"
	"testing"

	"taskdeck/internal/model"
	"taskdeck/internal/store"
)

func TestSetSession_PersistsTokenAndUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemory()
	s := NewService(kv, nil)

	if s.IsAuthenticated(ctx) {
		t.Fatalf("expected unauthenticated on empty storage")
	}
	if err := s.SetSession(ctx, "t1", model.User{Username: "alice"}); err != nil {
		t.Fatalf("set session: %v", err)
	}
	if !s.IsAuthenticated(ctx) {
		t.Fatalf("expected authenticated after SetSession")
	}
	cur, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.Token != "t1" || cur.User.Username != "alice" {
		t.Fatalf("unexpected session: %+v", cur)
	}

	raw, ok, _ := kv.Get(ctx, KeyUser)
	if !ok || raw == "" {
		t.Fatalf("expected user key to be written")
	}
}

func TestSetSession_RejectsEmptyToken(t *testing.T) {
	t.Parallel()

	s := NewService(store.NewMemory(), nil)
	if err := s.SetSession(context.Background(), "  ", model.User{Username: "alice"}); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestClearSession_RemovesBothKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemory()
	s := NewService(kv, nil)
	_ = s.SetSession(ctx, "t1", model.User{Username: "alice"})

	if err := s.ClearSession(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if kv.Len() != 0 {
		t.Fatalf("expected both keys removed, %d left", kv.Len())
	}
	if s.IsAuthenticated(ctx) {
		t.Fatalf("expected unauthenticated after clear")
	}
}

func TestCurrent_MalformedUserFallsBackToEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemory()
	_ = kv.Put(ctx, map[string]string{KeyToken: "t1", KeyUser: "{not json"})
	s := NewService(kv, nil)

	cur, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.Token != "t1" {
		t.Fatalf("expected token to survive, got %q", cur.Token)
	}
	if cur.User != (model.User{}) {
		t.Fatalf("expected empty user, got %+v", cur.User)
	}
	if got := cur.User.DisplayName("unknown"); got != "unknown" {
		t.Fatalf("expected fallback display name, got %q", got)
	}
}

func TestCurrent_TokenWithoutUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemory()
	_ = kv.Put(ctx, map[string]string{KeyToken: "t1"})
	cur, err := NewService(kv, nil).Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !cur.Authenticated() || cur.User.Username != "" {
		t.Fatalf("unexpected session: %+v", cur)
	}
}

func TestSubscribe_NotifiesOnChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewService(store.NewMemory(), nil)

	var seen []model.Session
	unsub := s.Subscribe(func(sess model.Session) { seen = append(seen, sess) })

	_ = s.SetSession(ctx, "t1", model.User{Username: "alice"})
	_ = s.ClearSession(ctx)
	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if !seen[0].Authenticated() || seen[1].Authenticated() {
		t.Fatalf("unexpected notifications: %+v", seen)
	}

	unsub()
	_ = s.SetSession(ctx, "t2", model.User{})
	if len(seen) != 2 {
		t.Fatalf("expected no notification after unsubscribe, got %d", len(seen))
	}
}

func TestService_WithSQLiteStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	if err := NewService(store.Store{Dir: dir}, nil).SetSession(ctx, "t1", model.User{Username: "alice"}); err != nil {
		t.Fatalf("set session: %v", err)
	}
	// A fresh service over the same directory sees the session (durable).
	cur, err := NewService(store.Store{Dir: dir}, nil).Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.Token != "t1" || cur.User.Username != "alice" {
		t.Fatalf("unexpected session: %+v", cur)
	}
}
