package gate

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestGateAdmitsUpToLimit(t *testing.T) {
	g := New(2)
	ctx := context.Background()

	if !g.Acquire(ctx, 10*time.Millisecond) {
		t.Fatalf("first Acquire should succeed")
	}
	if !g.Acquire(ctx, 10*time.Millisecond) {
		t.Fatalf("second Acquire should succeed")
	}
	if g.Acquire(ctx, 10*time.Millisecond) {
		t.Fatalf("third Acquire should time out at limit 2")
	}

	g.Release()
	if !g.Acquire(ctx, 10*time.Millisecond) {
		t.Fatalf("Acquire after Release should succeed")
	}
}

func TestGateTimeoutIsApproximatelyHonored(t *testing.T) {
	g := New(1)
	ctx := context.Background()
	if !g.Acquire(ctx, time.Millisecond) {
		t.Fatalf("initial Acquire should succeed")
	}

	start := time.Now()
	ok := g.Acquire(ctx, 50*time.Millisecond)
	elapsed := time.Since(start)

	if ok {
		t.Fatalf("Acquire should fail while the slot is held")
	}
	if elapsed < 40*time.Millisecond {
		t.Fatalf("Acquire returned too early: %v", elapsed)
	}
	if elapsed > 500*time.Millisecond {
		t.Fatalf("Acquire blocked far past its timeout: %v", elapsed)
	}
}

func TestGateContextCancellation(t *testing.T) {
	g := New(1)
	if !g.Acquire(context.Background(), time.Millisecond) {
		t.Fatalf("initial Acquire should succeed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if g.Acquire(ctx, time.Minute) {
		t.Fatalf("Acquire should fail once ctx is cancelled")
	}
}

func TestGateConcurrentAcquireRelease(t *testing.T) {
	g := New(3)
	var wg sync.WaitGroup
	var mu sync.Mutex
	inFlight, peak := 0, 0

	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !g.Acquire(context.Background(), time.Second) {
				t.Errorf("Acquire timed out under light load")
				return
			}
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			g.Release()
		}()
	}
	wg.Wait()

	if peak > 3 {
		t.Fatalf("peak concurrency %d exceeded the gate limit 3", peak)
	}
}
