package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(&Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestLockAcquireRelease(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	ok, err := client.AcquireLock(ctx, "lock:a", "owner-1", time.Second)
	if err != nil || !ok {
		t.Fatalf("first acquire = %v, %v", ok, err)
	}
	ok, _ = client.AcquireLock(ctx, "lock:a", "owner-2", time.Second)
	if ok {
		t.Fatal("second acquire should fail while held")
	}

	// a foreign value must not release the lock
	if err := client.ReleaseLock(ctx, "lock:a", "owner-2"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if !mr.Exists("lock:a") {
		t.Fatal("lock released by non-owner")
	}

	if err := client.ReleaseLock(ctx, "lock:a", "owner-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists("lock:a") {
		t.Fatal("lock still held after release")
	}
}

func TestWithLockBusy(t *testing.T) {
	client, mr := newTestClient(t)
	mr.Set("lock:busy", "someone-else")

	called := false
	err := client.WithLock(context.Background(), "lock:busy", "me", time.Second, func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrLockNotAcquired) {
		t.Fatalf("err = %v, want ErrLockNotAcquired", err)
	}
	if called {
		t.Fatal("fn ran without the lock")
	}
}

func TestWithLockRunsAndReleases(t *testing.T) {
	client, mr := newTestClient(t)

	err := client.WithLock(context.Background(), "lock:free", "me", time.Second, func() error {
		if !mr.Exists("lock:free") {
			t.Error("lock not held inside fn")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock: %v", err)
	}
	if mr.Exists("lock:free") {
		t.Fatal("lock not released")
	}
}

func TestJSONRoundTripAndPatternDelete(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	type summary struct{ Count int }

	var got summary
	hit, err := client.GetJSON(ctx, "dashboard:b1", &got)
	if err != nil || hit {
		t.Fatalf("miss expected, got hit=%v err=%v", hit, err)
	}

	if err := client.SetJSON(ctx, "dashboard:b1", summary{Count: 3}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	_ = client.SetJSON(ctx, "products:list:b1:x", summary{}, time.Minute)
	_ = client.SetJSON(ctx, "products:list:b1:y", summary{}, time.Minute)
	_ = client.SetJSON(ctx, "products:list:b2:x", summary{}, time.Minute)

	hit, err = client.GetJSON(ctx, "dashboard:b1", &got)
	if err != nil || !hit || got.Count != 3 {
		t.Fatalf("GetJSON = %+v hit=%v err=%v", got, hit, err)
	}

	if err := client.DeletePattern(ctx, "products:list:b1:*"); err != nil {
		t.Fatalf("DeletePattern: %v", err)
	}
	keys := client.Client.Keys(ctx, "products:list:*").Val()
	if len(keys) != 1 || keys[0] != "products:list:b2:x" {
		t.Fatalf("remaining keys = %v", keys)
	}
}
