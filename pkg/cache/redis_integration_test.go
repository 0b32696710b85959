//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		redisContainer.Terminate(ctx)
	})
	return client
}

func TestRedisStore_Integration_RoundTrip(t *testing.T) {
	store := NewRedisStore(setupRedis(t))
	ctx := context.Background()

	payload := []byte(`[{"id":"bitcoin","current_price":43000}]`)
	if err := store.Set(ctx, "coins:usd:page=1", payload, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "coins:usd:page=1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload mismatch: got %s, want %s", got, payload)
	}
}

func TestRedisStore_Integration_TTLExpiry(t *testing.T) {
	store := NewRedisStore(setupRedis(t))
	ctx := context.Background()

	if err := store.Set(ctx, "short", []byte("x"), time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	_, err := store.Get(ctx, "short")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after TTL, got %v", err)
	}
}

func TestRedisStore_Integration_Miss(t *testing.T) {
	store := NewRedisStore(setupRedis(t))

	_, err := store.Get(context.Background(), "never-stored")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisStore_Integration_NonPositiveTTLNotCached(t *testing.T) {
	store := NewRedisStore(setupRedis(t))
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("x"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("zero-TTL entry was cached: %v", err)
	}
}

func TestRedisStore_Integration_Clear(t *testing.T) {
	client := setupRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	// A foreign key outside the namespace must survive Clear.
	if err := client.Set(ctx, "other:app:key", "keep", 0).Err(); err != nil {
		t.Fatalf("seed foreign key: %v", err)
	}

	store.Set(ctx, "a", []byte("1"), time.Minute)
	store.Set(ctx, "b", []byte("2"), time.Minute)

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("entry survived Clear")
	}
	if v, err := client.Get(ctx, "other:app:key").Result(); err != nil || v != "keep" {
		t.Errorf("foreign key touched by Clear: %q, %v", v, err)
	}
}
