package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestGate_AcquireRelease(t *testing.T) {
	gate := NewGate(1, time.Second)
	ctx := context.Background()

	if err := gate.Acquire(ctx, "load"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if got := gate.ActiveCount(); got != 1 {
		t.Errorf("ActiveCount = %d, want 1", got)
	}
	if st := gate.Status(); st.Operation != "load" || st.Capacity != 1 {
		t.Errorf("Status = %+v", st)
	}
	gate.Release()
	if got := gate.ActiveCount(); got != 0 {
		t.Errorf("after Release, ActiveCount = %d, want 0", got)
	}
	if st := gate.Status(); st.Operation != "" {
		t.Errorf("Operation = %q after release", st.Operation)
	}
}

func TestGate_Busy(t *testing.T) {
	gate := NewGate(1, 20*time.Millisecond)
	ctx := context.Background()

	if err := gate.Acquire(ctx, "clean"); err != nil {
		t.Fatalf("Acquire failed on an empty gate: %v", err)
	}
	defer gate.Release()

	start := time.Now()
	err := gate.Acquire(ctx, "export")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("Acquire error = %v, want ErrBusy", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Acquire returned before the wait expired")
	}
}

func TestGate_ContextCancelled(t *testing.T) {
	gate := NewGate(1, time.Second)
	if err := gate.Acquire(context.Background(), "clean"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer gate.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := gate.Acquire(ctx, "load"); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire error = %v, want context.Canceled", err)
	}
}

func TestGate_Serialises(t *testing.T) {
	gate := NewGate(1, time.Second)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		running int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Acquire(ctx, "op"); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			mu.Lock()
			running++
			if running > maxSeen {
				maxSeen = running
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			gate.Release()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent operations = %d, want 1", maxSeen)
	}
}

func TestGate_WaitForDrain(t *testing.T) {
	gate := NewGate(1, time.Second)
	if err := gate.Acquire(context.Background(), "clean"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		gate.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := gate.WaitForDrain(ctx); err != nil {
		t.Fatalf("WaitForDrain: %v", err)
	}

	if err := gate.Acquire(context.Background(), "clean"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer gate.Release()
	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	if err := gate.WaitForDrain(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain error = %v, want DeadlineExceeded", err)
	}
}
