package eventhub

// Emitter pairs a value with its own hub. It is the result of Attach.
type Emitter[T any] struct {
	*Hub

	// Target is the value the capability was attached to.
	Target T
}

// Attach returns target augmented with a fresh, private hub. Target itself is
// left untouched; the hub's operations are reachable through the returned
// Emitter. Attaching the same target twice yields two independent hubs.
//
// Types that own their definition should embed Hub instead.
func Attach[T any](target T, opts ...Option) *Emitter[T] {
	return &Emitter[T]{
		Hub:    New(opts...),
		Target: target,
	}
}
