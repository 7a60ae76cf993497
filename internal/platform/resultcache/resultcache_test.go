package resultcache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || string(data) != "v" {
		t.Errorf("got (%q, %v), want (v, true)", data, ok)
	}
}

func TestMemory_MissOnUnknownKey(t *testing.T) {
	s := NewMemory()
	_, ok, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected miss for unknown key")
	}
}

func TestMemory_Expiry(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	_, ok, _ := s.Get(ctx, "k")
	if ok {
		t.Error("expected expired entry to be a miss")
	}
}

func TestMemory_Delete(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("v"), time.Minute)
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemory_Clear(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	s.Set(ctx, "a", []byte("1"), time.Minute)
	s.Set(ctx, "b", []byte("2"), time.Minute)
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Error("expected miss after clear")
	}
	if _, ok, _ := s.Get(ctx, "b"); ok {
		t.Error("expected miss after clear")
	}
}

func TestMemory_CleanupRemovesExpired(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Set(ctx, "k", []byte("v"), 5*time.Millisecond)
	s.StartCleanup(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	s.mu.RLock()
	_, present := s.entries["k"]
	s.mu.RUnlock()
	if present {
		t.Error("expected cleanup to remove expired entry")
	}
}
