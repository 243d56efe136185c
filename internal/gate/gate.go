// Package gate provides bounded-admission semaphores that keep the
// rate-limited AI backends from being overloaded by concurrent requests.
package gate

import (
	"context"
	"time"
)

// Gate admits at most its configured number of concurrent holders.
type Gate struct {
	slots chan struct{}
}

func New(limit int) *Gate {
	if limit <= 0 {
		limit = 1
	}
	return &Gate{slots: make(chan struct{}, limit)}
}

// Acquire blocks until a slot is free, the timeout elapses, or ctx is
// done. It returns false on timeout/cancellation; callers translate that
// into a "service busy" response rather than proceeding.
func (g *Gate) Acquire(ctx context.Context, timeout time.Duration) bool {
	select {
	case g.slots <- struct{}{}:
		return true
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case g.slots <- struct{}{}:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Release frees a slot. Must be called exactly once per successful
// Acquire, on every exit path of the guarded section.
func (g *Gate) Release() {
	select {
	case <-g.slots:
	default:
		// Release without a matching Acquire; ignore rather than block.
	}
}
