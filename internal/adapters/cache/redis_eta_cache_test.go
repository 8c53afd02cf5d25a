package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"oxygen-dispatch-service/internal/ports"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisETACache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisETACache(client, ttl), mr
}

func TestRedisETACacheMissThenHit(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "eta:a|b|NORMAL"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	want := ports.ETARecord{
		DistanceKM:      8.65,
		DurationMinutes: 28,
		PickupTime:      time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC),
		DeliveryTime:    time.Date(2026, 3, 1, 9, 43, 0, 0, time.UTC),
	}
	if err := c.Put(ctx, "eta:a|b|NORMAL", want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := c.Get(ctx, "eta:a|b|NORMAL")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.DistanceKM != want.DistanceKM || got.DurationMinutes != want.DurationMinutes {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if !got.PickupTime.Equal(want.PickupTime) || !got.DeliveryTime.Equal(want.DeliveryTime) {
		t.Fatalf("timestamps mismatch: %+v vs %+v", got, want)
	}
}

func TestRedisETACacheExpiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, "eta:k", ports.ETARecord{DurationMinutes: 15}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, err := c.Get(ctx, "eta:k"); err != nil || ok {
		t.Fatalf("expected miss after expiry, got ok=%v err=%v", ok, err)
	}
}

func TestRedisETACacheCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)

	mr.Set("eta:bad", "{not json")

	if _, ok, err := c.Get(context.Background(), "eta:bad"); err != nil || ok {
		t.Fatalf("corrupt entry must read as a miss, got ok=%v err=%v", ok, err)
	}
}

func TestRedisETACacheRejectsEmptyKey(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	if _, _, err := c.Get(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := c.Put(context.Background(), "", ports.ETARecord{}); err == nil {
		t.Fatal("expected error for empty key")
	}
}
