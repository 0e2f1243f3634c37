package cron

import (
	"context"
	"testing"
	"time"
)

type fakeLockStore struct {
	values map[string]string
}

func (f *fakeLockStore) AcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	key := f.LockKey(name)
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = holder
	return true, nil
}

func (f *fakeLockStore) ReleaseLock(ctx context.Context, name string) error {
	delete(f.values, f.LockKey(name))
	return nil
}

func (f *fakeLockStore) Get(ctx context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeLockStore) LockKey(name string) string { return "df:lock:" + name }

func TestRedisLockAcquireRelease(t *testing.T) {
	store := &fakeLockStore{}
	ctx := context.Background()

	first, err := NewRedisLock(store, "cron", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to win, ok=%v err=%v", ok, err)
	}

	second, err := NewRedisLock(store, "cron", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || ok {
		t.Fatalf("expected second acquire to lose, ok=%v err=%v", ok, err)
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected acquire after release, ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseOnlyWhenOwned(t *testing.T) {
	store := &fakeLockStore{}
	ctx := context.Background()

	holder, _ := NewRedisLock(store, "cron", time.Minute)
	if ok, _ := holder.Acquire(ctx); !ok {
		t.Fatalf("expected acquire to win")
	}

	// Simulate TTL expiry plus takeover by another worker.
	store.values[store.LockKey("cron")] = "someone-else"
	if err := holder.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values[store.LockKey("cron")] != "someone-else" {
		t.Fatalf("release must not drop a lock owned by another worker")
	}
}
