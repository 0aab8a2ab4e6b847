package caching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*CacheRedis, redis.UniversalClient) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	c, err := NewCacheRedis(client, false)
	if err != nil {
		t.Fatalf("NewCacheRedis: %v", err)
	}
	return c, client
}

func TestCacheSetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	type payload struct {
		Name  string
		Score int
	}

	if err := c.Set(ctx, "k", payload{Name: "alice", Score: 7}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got payload
	if err := c.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "alice" || got.Score != 7 {
		t.Errorf("got %+v", got)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Get(ctx, "k", &got); err == nil {
		t.Error("expected miss after delete")
	}
}

func TestUseCacheWithRO(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	calls := 0
	load := func() (string, error) {
		calls++
		return "value", nil
	}

	v, err := UseCacheWithRO(ctx, c, c, "key", time.Minute, load)
	if err != nil {
		t.Fatalf("UseCacheWithRO: %v", err)
	}
	if v != "value" || calls != 1 {
		t.Fatalf("first read: v=%q calls=%d", v, calls)
	}

	// Second read serves from cache.
	v, err = UseCacheWithRO(ctx, c, c, "key", time.Minute, load)
	if err != nil {
		t.Fatalf("UseCacheWithRO: %v", err)
	}
	if v != "value" || calls != 1 {
		t.Errorf("second read: v=%q calls=%d, want cache hit", v, calls)
	}
}

func TestUseCacheWithROPropagatesError(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	errBoom := errors.New("boom")
	_, err := UseCacheWithRO(ctx, c, c, "other", time.Minute, func() (int, error) {
		return 0, errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Errorf("expected callback error, got %v", err)
	}
}

func TestDeleteKeys(t *testing.T) {
	ctx := context.Background()
	c, client := newTestCache(t)

	for _, k := range []string{"leaderboard_page:a", "leaderboard_page:b", "other:c"} {
		if err := c.Set(ctx, k, "x", time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	if err := DeleteKeys(ctx, client, "leaderboard_page:*"); err != nil {
		t.Fatalf("DeleteKeys: %v", err)
	}

	var s string
	if err := c.Get(ctx, "leaderboard_page:a", &s); err == nil {
		t.Error("matched key should be deleted")
	}
	if err := c.Get(ctx, "other:c", &s); err != nil {
		t.Errorf("unmatched key should survive: %v", err)
	}
}
