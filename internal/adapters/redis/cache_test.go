package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "tatler/internal/adapters/redis"
	"tatler/internal/domain"
)

func TestCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	var missed domain.Restaurant
	ok, err := c.Get(ctx, "restaurant:1", &missed)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := domain.Restaurant{ID: 1, RestaurantID: "R1", Name: "Golden Dragon"}
	if err := c.Set(ctx, "restaurant:1", want, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got domain.Restaurant
	ok, err = c.Get(ctx, "restaurant:1", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Name != want.Name || got.RestaurantID != want.RestaurantID {
		t.Fatalf("got %+v", got)
	}

	if err := c.Del(ctx, "restaurant:1"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, _ = c.Get(ctx, "restaurant:1", &got)
	if ok {
		t.Fatal("expected miss after delete")
	}
}

func TestCache_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	if err := c.Set(ctx, "restaurant:2", domain.Restaurant{ID: 2}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("restaurant:2"); ttl <= 0 {
		t.Fatalf("expected a positive TTL, got %v", ttl)
	}
}
