package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "board", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for range workers {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "ranking:round:1", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "board" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	boom := errors.New("boom")

	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	v, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil || v != "ok" {
		t.Fatalf("expected second load to succeed, got v=%v err=%v", v, err)
	}
}

func TestStore_Expiry(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	now := time.Date(2026, 3, 7, 14, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "ranking:global", 1)
	if _, ok := store.Get(context.Background(), "ranking:global"); !ok {
		t.Fatalf("expected fresh entry")
	}

	now = now.Add(time.Minute)
	if _, ok := store.Get(context.Background(), "ranking:global"); ok {
		t.Fatalf("expected entry to expire at its ttl")
	}
	if store.Len() != 0 {
		t.Fatalf("expected no live entries, got %d", store.Len())
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()
	store.Set(ctx, "ranking:round:1", 1)
	store.Set(ctx, "ranking:global:pool=1", 2)
	store.Set(ctx, "participant:list", 3)

	store.DeletePrefix(ctx, "ranking:")
	if store.Len() != 1 {
		t.Fatalf("expected only the participant entry to remain, got %d", store.Len())
	}
	if _, ok := store.Get(ctx, "participant:list"); !ok {
		t.Fatalf("unrelated key was deleted")
	}
}

func TestStore_GetOrLoad_InvalidationDuringLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	oldResult := make(chan any, 1)
	go func() {
		v, _ := store.GetOrLoad(ctx, "ranking:round:1", func(context.Context) (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
		oldResult <- v
	}()
	<-started

	store.DeletePrefix(ctx, "ranking:")

	fresh, err := store.GetOrLoad(ctx, "ranking:round:1", func(context.Context) (any, error) {
		return "fresh", nil
	})
	if err != nil {
		t.Fatalf("load after invalidation: %v", err)
	}
	if fresh != "fresh" {
		t.Fatalf("caller after invalidation joined the earlier load, got %v", fresh)
	}

	close(release)
	if v := <-oldResult; v != "stale" {
		t.Fatalf("earlier caller should get its own load, got %v", v)
	}

	v, ok := store.Get(ctx, "ranking:round:1")
	if !ok || v != "fresh" {
		t.Fatalf("value after invalidation: %v (ok=%v)", v, ok)
	}
}

func TestStore_GetOrLoad_DeleteDuringLoadSkipsWrite(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	v, err := store.GetOrLoad(ctx, "participant:list", func(ctx context.Context) (any, error) {
		store.Delete(ctx, "participant:list")
		return "stale", nil
	})
	if err != nil || v != "stale" {
		t.Fatalf("unexpected load result: %v %v", v, err)
	}
	if _, ok := store.Get(ctx, "participant:list"); ok {
		t.Fatalf("a load invalidated mid-flight must not be cached")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
