package eventhub

import "context"

// NoReceiver is the canonical "no receiver" marker. Subscriptions registered
// without WithReceiver use it and match each other.
var NoReceiver any = nil

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Receiver is passed to the handler as its invocation context.
	Receiver any

	// Once removes the subscription after the pass that invoked it.
	Once bool
}

// SubscribeOption configures a subscription or a subscription lookup.
type SubscribeOption func(*SubscriptionConfig)

// WithReceiver sets the receiver of a subscription. For HasHandler and Off it
// selects which subscription of the handler is meant.
func WithReceiver(receiver any) SubscribeOption {
	return func(c *SubscriptionConfig) {
		c.Receiver = receiver
	}
}

// WithOnce makes the subscription fire at most once. It is ignored by
// HasHandler and Off.
func WithOnce() SubscribeOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

func newSubscriptionConfig(opts []SubscribeOption) SubscriptionConfig {
	var config SubscriptionConfig
	for _, opt := range opts {
		opt(&config)
	}
	return config
}

// SubscriptionInfo is a read-only view of a registered subscription.
type SubscriptionInfo struct {
	// ID is the unique subscription identifier.
	ID string

	// Type is the subscribed event type.
	Type string

	// Handler is the registered handler.
	Handler Handler

	// Receiver is the registered receiver, or nil.
	Receiver any

	// Once reports whether the subscription fires at most once.
	Once bool
}

// subscription is one registration of a handler for an event type.
type subscription struct {
	id        string
	eventType string
	handler   Handler
	receiver  any
	once      bool

	// spent is set on a once subscription right before it is invoked.
	spent bool

	// removed is set when the subscription leaves the registry, so a pass
	// holding a snapshot skips it.
	removed bool
}

// matches reports whether the subscription has the given identity pair.
func (s *subscription) matches(handler Handler, receiver any) bool {
	return sameRef(s.handler, handler) && sameRef(s.receiver, receiver)
}

// live reports whether the subscription can still be invoked.
func (s *subscription) live() bool {
	return !s.spent && !s.removed
}

func (s *subscription) info() SubscriptionInfo {
	return SubscriptionInfo{
		ID:       s.id,
		Type:     s.eventType,
		Handler:  s.handler,
		Receiver: s.receiver,
		Once:     s.once,
	}
}

// Handle runs the subscription's handler with its receiver. It lets the
// dispatcher execute subscriptions directly.
func (s *subscription) Handle(ctx context.Context, event any) error {
	return s.handler.HandleEvent(ctx, s.receiver, event)
}
