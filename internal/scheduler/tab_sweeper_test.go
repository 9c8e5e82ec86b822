package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pagemark/pagemark/internal/logger"
)

type countingRegistry struct {
	calls atomic.Int64
}

func (c *countingRegistry) Sweep(ctx context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestTabSweeper_RunsImmediatelyAndPeriodically(t *testing.T) {
	reg := &countingRegistry{}
	s := NewTabSweeper(reg, logger.NewNop(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	if reg.calls.Load() < 1 {
		t.Error("expected an immediate sweep on start")
	}

	deadline := time.After(time.Second)
	for reg.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected periodic sweeps, got %d", reg.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestTabSweeper_StopHaltsTicks(t *testing.T) {
	reg := &countingRegistry{}
	s := NewTabSweeper(reg, logger.NewNop(), 5*time.Millisecond)

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()

	settled := reg.calls.Load()
	time.Sleep(30 * time.Millisecond)
	// One in-flight tick may land after Stop; the count must then hold.
	after := reg.calls.Load()
	if after > settled+1 {
		t.Errorf("sweeps continued after stop: %d -> %d", settled, after)
	}
}
