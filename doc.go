// Package eventhub provides an embeddable publish/subscribe capability.
//
// A Hub keeps a private registry that maps event types to ordered lists of
// subscriptions and offers four operations: HasHandler, On, Off and Emit.
// Any value gains the capability by embedding a Hub; there is no separate
// emitter class.
//
//	type Door struct {
//	    eventhub.Hub
//	    Name string
//	}
//
//	door := &Door{Name: "front"}
//	door.On("open", eventhub.Func(func(ctx context.Context, recv, ev any) error {
//	    fmt.Println("opened:", ev.(*eventhub.Data).Data)
//	    return nil
//	}))
//	_ = door.Emit(ctx, "open", "by key")
//
// # Registration
//
// A subscription is identified by its (handler, receiver) pair, compared by
// identity. Registering the same pair twice for a type is a no-op. Handlers
// must therefore have a stable identity: use Func to wrap plain functions, or
// register a pointer to a type implementing Handler.
//
// The receiver is the value passed to the handler as its invocation context.
// Omitting it (WithReceiver not given, or nil) selects NoReceiver, so all
// registrations without a receiver match each other.
//
// # Dispatch
//
// Emit runs handlers synchronously in registration order. It accepts two event
// shapes:
//
//	hub.Emit(ctx, "save", a, b)         // handlers receive &Data{Type: "save", Params: [a b], Data: a}
//	hub.Emit(ctx, &SaveEvent{Type: ...}) // handlers receive the same *SaveEvent
//
// Only subscriptions present when the pass starts are candidates. A handler
// removed by an earlier handler in the same pass is not invoked. Subscriptions
// created with WithOnce are removed once the pass that invoked them ends.
//
// The first handler error stops the pass and is returned as a *HandlerError.
// Panics are not recovered.
//
// # Concurrency
//
// A Hub is not safe for concurrent use. It is built to tolerate handlers that
// call On, Off or Emit on the same hub while a pass is running.
package eventhub
