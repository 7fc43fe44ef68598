package dispatch

import (
	"context"
	"time"
)

// Handler is the unit of work run by a dispatcher. The hub's subscriptions
// implement it, binding their receiver and handler.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// Outcome classifies a handler call.
type Outcome uint8

// Outcomes.
const (
	// Succeeded means the handler ran and returned nil.
	Succeeded Outcome = iota

	// Failed means the handler ran and returned an error.
	Failed

	// Skipped means the handler did not run because the context had ended.
	Skipped

	numOutcomes
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result describes one handler call.
type Result struct {
	Outcome Outcome

	// Err is the handler's error, or the context's error when skipped.
	Err error

	// Duration is how long the handler ran. Zero when skipped.
	Duration time.Duration
}

// Ran reports whether the handler was invoked.
func (r Result) Ran() bool {
	return r.Outcome != Skipped
}
