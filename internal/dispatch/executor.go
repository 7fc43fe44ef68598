package dispatch

import (
	"context"
	"time"
)

// Executor invokes one handler and times it.
type Executor struct {
	now func() time.Time
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithClock replaces the time source used to measure handler duration.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExecutor creates an executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute calls handler unless ctx has already ended. Panics are not
// recovered.
func (e *Executor) Execute(ctx context.Context, event any, handler Handler) Result {
	if err := ctx.Err(); err != nil {
		return Result{Outcome: Skipped, Err: err}
	}

	start := e.now()
	err := handler.Handle(ctx, event)
	elapsed := e.now().Sub(start)

	if err != nil {
		return Result{Outcome: Failed, Err: err, Duration: elapsed}
	}
	return Result{Outcome: Succeeded, Duration: elapsed}
}
