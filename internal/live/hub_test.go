package live

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func receive[T any](t *testing.T, ch <-chan []T) []T {
	t.Helper()
	select {
	case snapshot, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return snapshot
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

func TestWatch_InitialSnapshotAndRefresh(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var version atomic.Int64
	stream := Watch(ctx, hub, func(context.Context) ([]int64, error) {
		return []int64{version.Load()}, nil
	}, "plate")

	if got := receive(t, stream); got[0] != 0 {
		t.Fatalf("expected initial snapshot 0, got %v", got)
	}

	version.Store(1)
	hub.Notify([]string{"plate"})
	if got := receive(t, stream); got[0] != 1 {
		t.Fatalf("expected refreshed snapshot 1, got %v", got)
	}
}

func TestWatch_IgnoresUnrelatedTables(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fetches atomic.Int64
	stream := Watch(ctx, hub, func(context.Context) ([]int64, error) {
		return []int64{fetches.Add(1)}, nil
	}, "orders")
	receive(t, stream)

	hub.Notify([]string{"plate"})
	select {
	case snapshot := <-stream:
		t.Fatalf("unexpected snapshot after unrelated write: %v", snapshot)
	case <-time.After(50 * time.Millisecond):
	}
	if fetches.Load() != 1 {
		t.Fatalf("expected a single fetch, got %d", fetches.Load())
	}
}

func TestWatch_SlowReaderSeesLatest(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var version atomic.Int64
	stream := Watch(ctx, hub, func(context.Context) ([]int64, error) {
		return []int64{version.Load()}, nil
	}, "orderDetails")
	receive(t, stream)

	for i := 1; i <= 50; i++ {
		version.Store(int64(i))
		hub.Notify([]string{"orderDetails"})
	}

	deadline := time.After(time.Second)
	for {
		select {
		case snapshot := <-stream:
			if snapshot[0] == 50 {
				return
			}
		case <-deadline:
			t.Fatal("latest snapshot was never delivered")
		}
	}
}

func TestWatch_CancelClosesAndUnsubscribes(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	stream := Watch(ctx, hub, func(context.Context) ([]string, error) {
		return []string{"x"}, nil
	}, "plate", "orderDetails")
	receive(t, stream)
	if hub.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.Subscribers())
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-stream:
			if !ok {
				if hub.Subscribers() != 0 {
					t.Fatalf("expected no subscribers after cancel, got %d", hub.Subscribers())
				}
				return
			}
		case <-deadline:
			t.Fatal("stream was not closed after cancel")
		}
	}
}

func TestWatch_FetchErrorKeepsStreamAlive(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	stream := Watch(ctx, hub, func(context.Context) ([]int64, error) {
		n := calls.Add(1)
		if n == 2 {
			return nil, errors.New("database is locked")
		}
		return []int64{n}, nil
	}, "plate")

	if got := receive(t, stream); got[0] != 1 {
		t.Fatalf("unexpected initial snapshot %v", got)
	}
	hub.Notify([]string{"plate"})
	hub.Notify([]string{"plate"})

	deadline := time.After(time.Second)
	for {
		hub.Notify([]string{"plate"})
		select {
		case snapshot := <-stream:
			if snapshot[0] >= 3 {
				return
			}
		case <-deadline:
			t.Fatal("stream did not recover after fetch error")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
