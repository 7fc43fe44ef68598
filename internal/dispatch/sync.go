package dispatch

import (
	"context"
	"sync/atomic"
	"time"
)

// SyncDispatcher runs handlers in the caller's goroutine and keeps running
// totals per outcome. The zero value is ready to use.
type SyncDispatcher struct {
	executor *Executor

	counts  [numOutcomes]atomic.Uint64
	elapsed atomic.Int64
}

// SyncOption configures a SyncDispatcher.
type SyncOption func(*SyncDispatcher)

// WithExecutor sets the executor used to run handlers.
func WithExecutor(e *Executor) SyncOption {
	return func(d *SyncDispatcher) {
		d.executor = e
	}
}

// NewSyncDispatcher creates a synchronous dispatcher.
func NewSyncDispatcher(opts ...SyncOption) *SyncDispatcher {
	d := &SyncDispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs handler with event and blocks until it returns.
func (d *SyncDispatcher) Dispatch(ctx context.Context, event any, handler Handler) Result {
	if d.executor == nil {
		d.executor = NewExecutor()
	}

	result := d.executor.Execute(ctx, event, handler)
	d.counts[result.Outcome].Add(1)
	d.elapsed.Add(int64(result.Duration))
	return result
}

// Totals returns the running totals. Fields are read one by one and may be
// momentarily inconsistent with each other while a handler runs.
func (d *SyncDispatcher) Totals() Totals {
	return Totals{
		Succeeded: d.counts[Succeeded].Load(),
		Failed:    d.counts[Failed].Load(),
		Skipped:   d.counts[Skipped].Load(),
		Elapsed:   time.Duration(d.elapsed.Load()),
	}
}

// Totals summarizes the calls made by a dispatcher.
type Totals struct {
	Succeeded uint64
	Failed    uint64
	Skipped   uint64

	// Elapsed is the time spent inside handlers.
	Elapsed time.Duration
}

// Ran returns the number of handlers that were invoked.
func (t Totals) Ran() uint64 {
	return t.Succeeded + t.Failed
}

// Mean returns the average handler run time.
func (t Totals) Mean() time.Duration {
	if n := t.Ran(); n > 0 {
		return t.Elapsed / time.Duration(n)
	}
	return 0
}
