package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before Set
	if _, hit, _ := c.Get(ctx, "tree:abc"); hit {
		t.Error("Get before Set should miss")
	}

	// Round-trip
	if err := c.Set(ctx, "tree:abc", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "tree:abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit || string(data) != "payload" {
		t.Errorf("Get = %q hit=%v, want payload hit", data, hit)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "tree:old", []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "tree:old"); hit {
		t.Error("expired entry should miss")
	}

	// Delete
	if err := c.Delete(ctx, "tree:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "tree:abc"); hit {
		t.Error("Get after Delete should miss")
	}

	// Deleting a missing key is fine
	if err := c.Delete(ctx, "tree:missing"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("triangle"))
	h2 := Hash([]byte("triangle"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	if h3 := Hash([]byte("square")); h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// Different options must produce different keys
	tk1 := k.TreeKey("g1", TreeKeyOpts{Colors: 3})
	tk2 := k.TreeKey("g1", TreeKeyOpts{Colors: 4})
	if tk1 == tk2 {
		t.Error("Different TreeKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(tk1, "tree:") {
		t.Errorf("TreeKey should be namespaced: %s", tk1)
	}

	lk1 := k.LayoutKey("t1", LayoutKeyOpts{LeafGap: 50, LevelHeight: 70})
	lk2 := k.LayoutKey("t1", LayoutKeyOpts{LeafGap: 40, LevelHeight: 70})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	rk1 := k.RenderKey("l1", RenderKeyOpts{Format: "svg"})
	rk2 := k.RenderKey("l1", RenderKeyOpts{Format: "dot"})
	if rk1 == rk2 {
		t.Error("Different formats should produce different keys")
	}

	// Same inputs, same key
	if k.TreeKey("g1", TreeKeyOpts{Colors: 3}) != tk1 {
		t.Error("TreeKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	base := NewDefaultKeyer()
	scoped := NewScopedKeyer(base, "worker1:")

	want := "worker1:" + base.TreeKey("g1", TreeKeyOpts{Colors: 3})
	if got := scoped.TreeKey("g1", TreeKeyOpts{Colors: 3}); got != want {
		t.Errorf("TreeKey = %s, want %s", got, want)
	}

	// Nil inner falls back to the default keyer
	fallback := NewScopedKeyer(nil, "p:")
	if got := fallback.LayoutKey("t1", LayoutKeyOpts{}); !strings.HasPrefix(got, "p:layout:") {
		t.Errorf("LayoutKey = %s, want p:layout: prefix", got)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Non-retryable errors fail immediately
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return context.DeadlineExceeded
	})
	if err == nil || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d, want 1 call", err, calls)
	}

	// Retryable errors eventually succeed
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(context.DeadlineExceeded)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: err=%v calls=%d, want nil after 2 calls", err, calls)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil should not be retryable")
	}
	if IsRetryable(context.Canceled) {
		t.Error("plain error should not be retryable")
	}
	if !IsRetryable(Retryable(context.Canceled)) {
		t.Error("wrapped error should be retryable")
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}
