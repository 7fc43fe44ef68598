package eventhub

// HandlerError wraps an error returned by a handler during Emit.
type HandlerError struct {
	// Type is the event type being dispatched.
	Type string

	// SubscriptionID is the ID of the subscription whose handler failed.
	SubscriptionID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return "handler error for subscription " + e.SubscriptionID + " on event " + e.Type + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}
