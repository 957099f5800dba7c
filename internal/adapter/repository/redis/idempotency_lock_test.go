package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/walletledger/internal/domain"
)

func TestIdempotencyLockRejectsInFlightDuplicate(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	lock := NewIdempotencyLock(client, time.Minute)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "tenant-a", "w1", "key-1", "req-1")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if _, err := lock.Acquire(ctx, "tenant-a", "w1", "key-1", "req-2"); !errors.Is(err, domain.ErrRequestInFlight) {
		t.Fatalf("expected ErrRequestInFlight, got %v", err)
	}

	// Keys are namespaced per tenant and per wallet.
	otherRelease, err := lock.Acquire(ctx, "tenant-b", "w1", "key-1", "req-3")
	if err != nil {
		t.Fatalf("expected other tenant to acquire, got %v", err)
	}
	defer otherRelease(ctx)

	walletRelease, err := lock.Acquire(ctx, "tenant-a", "w2", "key-1", "req-5")
	if err != nil {
		t.Fatalf("expected other wallet to acquire, got %v", err)
	}
	defer walletRelease(ctx)

	if err := release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, err := lock.Acquire(ctx, "tenant-a", "w1", "key-1", "req-4"); err != nil {
		t.Fatalf("expected acquire after release, got %v", err)
	}
}

func TestIdempotencyLockReleaseKeepsForeignLock(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	lock := NewIdempotencyLock(client, time.Second)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "tenant-a", "w1", "key-1", "req-1")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	mr.FastForward(2 * time.Second)
	if _, err := lock.Acquire(ctx, "tenant-a", "w1", "key-1", "req-2"); err != nil {
		t.Fatalf("expected acquire after expiry, got %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("stale release failed: %v", err)
	}
	if got, _ := mr.Get(lock.key("tenant-a", "w1", "key-1")); got != "req-2" {
		t.Fatalf("expected new owner's lock to survive, got %q", got)
	}
}
