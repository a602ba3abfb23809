package core

// gate.go serialises session operations.
//
// HTTP handlers run on their own goroutines, but the session is a single
// pipeline: only one load, rename, clean, summary or export may run at a
// time. Operations arriving while another runs wait up to maxWait and then
// fail with ErrBusy. WaitForDrain lets shutdown wait for the running
// operation.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBusy is returned when another operation holds the session for longer
// than the configured wait.
var ErrBusy = errors.New("another operation is in progress, please try again")

// DefaultOperationWait is how long to wait for the session before failing.
const DefaultOperationWait = 30 * time.Second

// Gate is a semaphore guarding the session.
type Gate struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu      sync.RWMutex
	active  int
	current string
}

// NewGate creates a gate admitting capacity concurrent operations.
func NewGate(capacity int, maxWait time.Duration) *Gate {
	if capacity <= 0 {
		capacity = 1
	}
	if maxWait <= 0 {
		maxWait = DefaultOperationWait
	}
	return &Gate{
		semaphore: make(chan struct{}, capacity),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller must call Release when done.
func (g *Gate) Acquire(ctx context.Context, operation string) error {
	waitCtx, cancel := context.WithTimeout(ctx, g.maxWait)
	defer cancel()

	select {
	case g.semaphore <- struct{}{}:
		g.mu.Lock()
		g.active++
		g.current = operation
		g.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrBusy
	}
}

// Release frees a slot taken by Acquire.
func (g *Gate) Release() {
	g.mu.Lock()
	g.active--
	if g.active == 0 {
		g.current = ""
	}
	g.mu.Unlock()

	<-g.semaphore
}

func (g *Gate) ActiveCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active
}

// WaitForDrain blocks until no operation is running or ctx is done.
func (g *Gate) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if g.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// GateStatus is a snapshot of the gate for health reporting.
type GateStatus struct {
	Active    int    `json:"active"`
	Capacity  int    `json:"capacity"`
	Operation string `json:"operation,omitempty"`
}

func (g *Gate) Status() GateStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return GateStatus{
		Active:    g.active,
		Capacity:  cap(g.semaphore),
		Operation: g.current,
	}
}
