package deadline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunCompleted(t *testing.T) {
	out := Run(context.Background(), time.Second, func() (string, error) {
		return "ok", nil
	})
	if out.Status != Completed || out.Value != "ok" || out.Err != nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestRunFailed(t *testing.T) {
	boom := errors.New("boom")
	out := Run(context.Background(), time.Second, func() (int, error) {
		return 0, boom
	})
	if out.Status != Failed || !errors.Is(out.Err, boom) {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestRunTimedOut(t *testing.T) {
	release := make(chan struct{})
	start := time.Now()
	out := Run(context.Background(), 20*time.Millisecond, func() (int, error) {
		<-release
		return 42, nil
	})
	if out.Status != TimedOut {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("caller blocked too long: %v", elapsed)
	}
	close(release)
}

func TestAbandonedWorkerCannotMutateCallerState(t *testing.T) {
	var observed atomic.Int32
	release := make(chan struct{})
	out := Run(context.Background(), 10*time.Millisecond, func() (int, error) {
		<-release
		return 7, nil
	})
	if out.Status != TimedOut {
		t.Fatalf("expected timeout, got %+v", out)
	}
	observed.Store(int32(out.Value)) // zero value; the late 7 must never appear
	close(release)
	time.Sleep(20 * time.Millisecond)
	if observed.Load() != 0 {
		t.Fatalf("abandoned worker leaked into caller state")
	}
}

func TestRunRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := Run(ctx, time.Second, func() (int, error) {
		time.Sleep(50 * time.Millisecond)
		return 1, nil
	})
	if out.Status != Failed || !errors.Is(out.Err, context.Canceled) {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}
