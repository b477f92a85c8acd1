package store

import (
	"context"
	"os"
	"testing"
)

func TestStore_PutGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	if _, ok, err := s.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("expected missing key on empty store, ok=%v err=%v", ok, err)
	}

	if err := s.Put(ctx, map[string]string{"token": "t1", "user": `{"username":"alice"}`}); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, ok, err := s.Get(ctx, "token")
	if err != nil || !ok || v != "t1" {
		t.Fatalf("get token: v=%q ok=%v err=%v", v, ok, err)
	}

	// Upsert replaces.
	if err := s.Put(ctx, map[string]string{"token": "t2"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if v, _, _ := s.Get(ctx, "token"); v != "t2" {
		t.Fatalf("expected t2 after upsert, got %q", v)
	}

	if err := s.Delete(ctx, "token", "user", "missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, k := range []string{"token", "user"} {
		if _, ok, err := s.Get(ctx, k); err != nil || ok {
			t.Fatalf("expected %s deleted, ok=%v err=%v", k, ok, err)
		}
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	if err := (Store{Dir: dir}).Put(ctx, map[string]string{"token": "abc"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, ok, err := (Store{Dir: dir}).Get(ctx, "token")
	if err != nil || !ok || v != "abc" {
		t.Fatalf("expected value from a fresh Store, v=%q ok=%v err=%v", v, ok, err)
	}

	st, err := os.Stat((Store{Dir: dir}).Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm()&0o077 != 0 {
		t.Fatalf("expected private file mode, got %v", st.Mode().Perm())
	}
}

func TestStore_EmptyDirIsAnError(t *testing.T) {
	t.Parallel()

	if err := (Store{}).Put(context.Background(), map[string]string{"k": "v"}); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestMemory_Contract(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	_ = m.Put(ctx, map[string]string{"a": "1", "b": "2"})
	if v, ok, _ := m.Get(ctx, "a"); !ok || v != "1" {
		t.Fatalf("get a: %q %v", v, ok)
	}
	_ = m.Delete(ctx, "a", "b")
	if m.Len() != 0 {
		t.Fatalf("expected empty store, len=%d", m.Len())
	}
}
