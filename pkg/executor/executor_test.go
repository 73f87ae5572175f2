package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsAllTasks(t *testing.T) {
	p := NewPool(4)
	ctx := context.Background()

	var count atomic.Int64
	for i := 0; i < 20; i++ {
		p.Go(ctx, func(context.Context) error {
			count.Add(1)
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if count.Load() != 20 {
		t.Errorf("expected 20 tasks to run, got %d", count.Load())
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const workers = 3
	p := NewPool(workers)
	ctx := context.Background()

	var mu sync.Mutex
	var inFlight, peak int

	for i := 0; i < 12; i++ {
		p.Go(ctx, func(context.Context) error {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if peak > workers {
		t.Errorf("concurrency bound violated: peak %d > %d workers", peak, workers)
	}
}

func TestPoolReturnsFirstError(t *testing.T) {
	p := NewPool(2)
	ctx := context.Background()
	boom := errors.New("boom")

	p.Go(ctx, func(context.Context) error { return nil })
	p.Go(ctx, func(context.Context) error { return boom })
	p.Go(ctx, func(context.Context) error { return nil })

	if err := p.Wait(); !errors.Is(err, boom) {
		t.Errorf("expected first task error, got %v", err)
	}
}

func TestPoolCanceledContext(t *testing.T) {
	p := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())

	block := make(chan struct{})
	p.Go(ctx, func(context.Context) error {
		<-block
		return nil
	})

	cancel()
	// Worker slot is taken; this submission must fail via the context
	// instead of blocking forever.
	p.Go(ctx, func(context.Context) error { return nil })
	close(block)

	if err := p.Wait(); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context error, got %v", err)
	}
}

func TestDefaultFactory(t *testing.T) {
	p := DefaultFactory(0)
	if p == nil || p.ID() == "" {
		t.Fatal("expected a pool with an id")
	}
	if err := p.Wait(); err != nil {
		t.Errorf("empty pool wait failed: %v", err)
	}
}
