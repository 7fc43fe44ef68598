package eventhub

import (
	"sync/atomic"
	"time"
)

// Stats contains hub statistics.
type Stats struct {
	// Emits is the number of Emit calls that carried an event type, counting
	// types that had no subscriptions.
	Emits uint64

	// Dispatches is the number of passes that had at least one candidate.
	Dispatches uint64

	// Invocations is the number of handler calls.
	Invocations uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerTime is the total time spent inside handlers.
	HandlerTime time.Duration

	// OnceRemoved is the number of once subscriptions removed after firing.
	OnceRemoved uint64

	// Subscriptions is the current number of live subscriptions.
	Subscriptions int
}

// hubStats holds the running counters. Counters are atomic so a metrics
// goroutine may read them while the owner emits.
type hubStats struct {
	emits       atomic.Uint64
	dispatches  atomic.Uint64
	onceRemoved atomic.Uint64
}
