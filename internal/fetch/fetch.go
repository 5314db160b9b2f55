// Package fetch decouples "when to fetch" from "how to fetch": a Fetcher
// wraps one async data dependency with loading/error/data state and an
// explicit trigger, so callers re-run the same operation with fresh
// arguments without re-implementing settlement bookkeeping.
package fetch

import (
	"context"
	"sync"
)

// Operation is the unit of work a Fetcher runs. The argument carries
// per-invocation inputs (typically a filter snapshot); credentials live
// inside the closure via the store client that produced it.
type Operation[A, T any] func(ctx context.Context, arg A) (T, error)

// State is one observable snapshot of a fetch dependency. Exactly one of
// Data/Err is meaningful once Loading is false and at least one run settled.
type State[T any] struct {
	Loading bool
	Data    T
	Err     error
}

// Fetcher owns the state of a single logical data dependency. Each Run is
// tagged with a sequence number; a settlement is applied only when no later
// run has already been applied, so a stale response never overwrites a
// fresher one regardless of completion order.
type Fetcher[A, T any] struct {
	op Operation[A, T]

	mu       sync.Mutex
	state    State[T]
	initSeq  uint64
	applySeq uint64
}

// New returns a Fetcher for the given operation.
func New[A, T any](op Operation[A, T]) *Fetcher[A, T] {
	return &Fetcher[A, T]{op: op}
}

// Run launches the operation with the given argument. The returned channel
// delivers this run's settled state exactly once, whether or not the
// settlement was applied to the fetcher (a later run may have superseded it).
func (f *Fetcher[A, T]) Run(ctx context.Context, arg A) <-chan State[T] {
	f.mu.Lock()
	f.initSeq++
	seq := f.initSeq
	f.state.Loading = true
	f.mu.Unlock()

	done := make(chan State[T], 1)
	go func() {
		data, err := f.op(ctx, arg)

		settled := State[T]{Data: data, Err: err}
		if err != nil {
			var zero T
			settled.Data = zero
		}

		f.mu.Lock()
		if seq > f.applySeq {
			f.applySeq = seq
			f.state = State[T]{
				Loading: f.initSeq > f.applySeq,
				Data:    settled.Data,
				Err:     settled.Err,
			}
		}
		f.mu.Unlock()

		done <- settled
	}()
	return done
}

// Snapshot returns the current state.
func (f *Fetcher[A, T]) Snapshot() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}
