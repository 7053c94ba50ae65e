package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestCollection_NilIsAlwaysMissing(t *testing.T) {
	var c *Collection[string]
	ctx := context.Background()

	c.Set(ctx, []string{"a"})
	if _, ok := c.Get(ctx); ok {
		t.Fatal("nil collection should never hit")
	}
	c.Invalidate(ctx)

	if NewCollection[string](nil, "k", time.Minute) != nil {
		t.Fatal("expected nil collection without a client")
	}
}

func TestCollection_Redis(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	defer client.Close()

	type item struct {
		Name string `json:"name"`
	}
	key := "keybox:test:collection:" + time.Now().Format(time.RFC3339Nano)
	c := NewCollection[item](client, key, time.Minute)
	defer client.Del(ctx, key)

	if _, ok := c.Get(ctx); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	c.Set(ctx, []item{{Name: "Ana"}, {Name: "Luis"}})
	got, ok := c.Get(ctx)
	if !ok || len(got) != 2 || got[1].Name != "Luis" {
		t.Fatalf("unexpected cache content: %v %v", got, ok)
	}

	c.Invalidate(ctx)
	if _, ok := c.Get(ctx); ok {
		t.Fatal("expected a miss after invalidation")
	}

	if err := client.Get(ctx, key).Err(); err != redis.Nil {
		t.Errorf("expected key to be gone, got %v", err)
	}
}
