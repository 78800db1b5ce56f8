package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T, prefix string) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr(), prefix)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, "hm:")

	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("hm:k") {
		t.Error("key should be stored under the prefix")
	}

	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, hit %v, err %v", data, hit, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should expire after its ttl")
	}

	if err := c.Set(ctx, "d", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "d"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "d"); hit {
		t.Error("entry still present after Delete")
	}
}

func TestRedisCacheEmptyValueIsHit(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedis(t, "hm:")

	if err := c.Set(ctx, "empty", nil, 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "empty"); err != nil || !hit {
		t.Errorf("Get(empty) = hit %v, err %v", hit, err)
	}
}

func TestRedisCacheClear(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, "hm:")

	if err := mr.Set("other:key", "keep"); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d keys, want 3", n)
	}
	if !mr.Exists("other:key") {
		t.Error("Clear must not touch keys outside its prefix")
	}
}

func TestRedisCacheClearWithoutPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	defer c.Close()

	if _, err := c.Clear(context.Background()); err == nil {
		t.Error("Clear without prefix should fail")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-url", ""); err == nil {
		t.Error("NewRedisCache should reject an invalid url")
	}
}

func TestRedisCacheClosed(t *testing.T) {
	c, _ := newTestRedis(t, "hm:")
	_ = c.Close()

	_, _, err := c.Get(context.Background(), "k")
	if err == nil {
		t.Fatal("Get on closed client should fail")
	}
	if IsRetryable(err) {
		t.Error("closed client errors should not be retried")
	}
}
