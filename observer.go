package eventhub

import (
	"context"
	"time"
)

// Invocation describes one handler call made during a dispatch pass.
type Invocation struct {
	// Type is the dispatched event type.
	Type string

	// SubscriptionID identifies the invoked subscription.
	SubscriptionID string

	// Once reports whether the subscription was a once subscription.
	Once bool

	// Duration is how long the handler ran.
	Duration time.Duration

	// Err is the error returned by the handler, if any.
	Err error
}

// Observer is notified around dispatch passes. Observers run synchronously
// inside Emit and must not call back into the hub.
type Observer interface {
	// EmitStarted is called before the first handler of a pass runs. The
	// returned context is passed to the handlers and to the other callbacks.
	EmitStarted(ctx context.Context, eventType string, candidates int) context.Context

	// HandlerFinished is called after each handler returns.
	HandlerFinished(ctx context.Context, inv Invocation)

	// EmitFinished is called when the pass ends, with the number of handlers
	// invoked and the error returned by Emit.
	EmitFinished(ctx context.Context, eventType string, invoked int, err error)
}

// Observers combines observers into one. Callbacks run in argument order.
func Observers(observers ...Observer) Observer {
	var list multiObserver
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	switch len(list) {
	case 0:
		return nopObserver{}
	case 1:
		return list[0]
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) EmitStarted(ctx context.Context, eventType string, candidates int) context.Context {
	for _, o := range m {
		ctx = o.EmitStarted(ctx, eventType, candidates)
	}
	return ctx
}

func (m multiObserver) HandlerFinished(ctx context.Context, inv Invocation) {
	for _, o := range m {
		o.HandlerFinished(ctx, inv)
	}
}

func (m multiObserver) EmitFinished(ctx context.Context, eventType string, invoked int, err error) {
	for _, o := range m {
		o.EmitFinished(ctx, eventType, invoked, err)
	}
}

type nopObserver struct{}

func (nopObserver) EmitStarted(ctx context.Context, _ string, _ int) context.Context { return ctx }
func (nopObserver) HandlerFinished(context.Context, Invocation)                      {}
func (nopObserver) EmitFinished(context.Context, string, int, error)                 {}
