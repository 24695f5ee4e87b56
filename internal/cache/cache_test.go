package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/triviarooms/internal/logger"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory(clockwork.NewFakeClock())
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("expected miss for unknown key")
	}

	if err := c.Set(ctx, "question:1", []byte("payload"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get(ctx, "question:1")
	if !ok || string(got) != "payload" {
		t.Errorf("expected payload, got %q (ok=%v)", got, ok)
	}
}

func TestMemory_CopiesValue(t *testing.T) {
	c := NewMemory(clockwork.NewFakeClock())
	ctx := context.Background()

	buf := []byte("abc")
	c.Set(ctx, "k", buf, 0)
	buf[0] = 'z'

	got, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("expected stored copy, got %q", got)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewMemory(clock)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)

	clock.Advance(59 * time.Second)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("expected entry before expiry")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected entry to expire")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry evicted, got %d entries", c.Len())
	}
}

func TestMemory_NoTTLNeverExpires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewMemory(clock)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), -1)
	clock.Advance(365 * 24 * time.Hour)

	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("expected entry without ttl to persist")
	}
}

func TestMemory_SetSweepsExpiredEntries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewMemory(clock)
	ctx := context.Background()

	c.Set(ctx, "short:1", []byte("v"), 10*time.Second)
	c.Set(ctx, "short:2", []byte("v"), 10*time.Second)
	c.Set(ctx, "forever", []byte("v"), 0)

	// expired but inside the sweep interval
	clock.Advance(30 * time.Second)
	c.Set(ctx, "live", []byte("v"), time.Hour)
	if c.Len() != 4 {
		t.Fatalf("expected no sweep yet, got %d entries", c.Len())
	}

	clock.Advance(sweepInterval)
	c.Set(ctx, "trigger", []byte("v"), time.Hour)
	if c.Len() != 3 {
		t.Errorf("expected expired entries swept, got %d entries", c.Len())
	}
	if _, ok := c.Get(ctx, "forever"); !ok {
		t.Error("expected entry without ttl to survive the sweep")
	}
	if _, ok := c.Get(ctx, "live"); !ok {
		t.Error("expected unexpired entry to survive the sweep")
	}
}

func TestNewMemory_NilClock(t *testing.T) {
	c := NewMemory(nil)
	if c.clock == nil {
		t.Error("expected real clock fallback")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := NewRedis(RedisConfig{Addr: "127.0.0.1:1"}, logger.Discard())
	if err == nil {
		t.Error("expected connection error for unreachable server")
	}
}
