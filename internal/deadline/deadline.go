// Package deadline bounds a single blocking call in wall-clock time with
// at-most-once observable completion. Generation calls are frequently
// non-cancellable; the executor abandons a runaway worker instead of
// requiring cancellability from the driver.
package deadline

import (
	"context"
	"time"
)

// Status discriminates the three possible outcomes of Run.
type Status int

const (
	Completed Status = iota
	TimedOut
	Failed
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed_out"
	default:
		return "failed"
	}
}

// Outcome is the single result the caller observes.
type Outcome[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Run executes fn on a dedicated worker and blocks until fn returns, the
// timeout elapses, or ctx is done. Exactly one outcome is observed. On
// timeout the worker is abandoned: its eventual completion lands in a
// buffered slot nobody reads and cannot mutate caller state.
func Run[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) Outcome[T] {
	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		if r.err != nil {
			return Outcome[T]{Status: Failed, Err: r.err}
		}
		return Outcome[T]{Status: Completed, Value: r.value}
	case <-timer.C:
		return Outcome[T]{Status: TimedOut}
	case <-ctx.Done():
		return Outcome[T]{Status: Failed, Err: ctx.Err()}
	}
}
