package eventhub

import "context"

// Handler is the interface for event handlers.
//
// The receiver is the value registered with WithReceiver, or nil. The event is
// either a *Data built by Emit for string event types, or the typed value that
// was passed to Emit; handlers should type-assert.
type Handler interface {
	HandleEvent(ctx context.Context, receiver any, event any) error
}

// HandlerFunc is the signature of a function handler.
//
// HandlerFunc deliberately does not implement Handler: Go functions have no
// identity, so they must be wrapped with Func before registration.
type HandlerFunc func(ctx context.Context, receiver any, event any) error

// FuncHandler is a Handler backed by a function. Each FuncHandler has its own
// identity; wrapping the same function twice yields two distinct handlers.
type FuncHandler struct {
	fn HandlerFunc
}

// Func wraps fn into a handler with a stable identity.
func Func(fn HandlerFunc) *FuncHandler {
	return &FuncHandler{fn: fn}
}

// HandleEvent implements Handler.
func (h *FuncHandler) HandleEvent(ctx context.Context, receiver any, event any) error {
	return h.fn(ctx, receiver, event)
}
