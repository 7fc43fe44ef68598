package eventhub

import (
	"context"
	"slices"
	"sort"

	"github.com/dshills/eventhub/internal/dispatch"
)

// Hub is the event registration and dispatch capability.
//
// The zero value is an empty hub ready to use, which makes Hub suitable for
// embedding. A Hub must not be copied after first use.
type Hub struct {
	// events is nil until the first successful On.
	events map[string][]*subscription

	config     *hubConfig
	dispatcher dispatch.SyncDispatcher
	stats      hubStats
}

// New creates a standalone hub with the given options.
func New(opts ...Option) *Hub {
	h := &Hub{}
	h.Configure(opts...)
	return h
}

// Configure applies options to the hub. It is meant for hubs embedded by
// value, which cannot be built with New.
func (h *Hub) Configure(opts ...Option) *Hub {
	config := *h.cfg()
	for _, opt := range opts {
		opt(&config)
	}
	h.config = &config
	return h
}

func (h *Hub) cfg() *hubConfig {
	if h.config == nil {
		config := defaultHubConfig()
		h.config = &config
	}
	return h.config
}

// HasHandler reports whether handlers are registered.
//
// With an empty event type it reports whether any type has a subscription.
// With a nil handler it reports whether the type has a subscription. Otherwise
// it reports whether the (handler, receiver) pair is registered for the type;
// the receiver is given with WithReceiver and defaults to NoReceiver.
//
// A once subscription stops counting as soon as it has been invoked.
func (h *Hub) HasHandler(eventType string, handler Handler, opts ...SubscribeOption) bool {
	if h.events == nil {
		return false
	}

	if eventType == "" {
		for _, subs := range h.events {
			if hasLive(subs) {
				return true
			}
		}
		return false
	}

	subs := h.events[eventType]
	if handler == nil {
		return hasLive(subs)
	}

	receiver := newSubscriptionConfig(opts).Receiver
	return indexOf(subs, handler, receiver) >= 0
}

// On registers handler for eventType and returns the hub.
//
// If the (handler, receiver) pair is already registered for the type the call
// does nothing, and the existing subscription keeps its settings. Otherwise the
// subscription is appended and runs after the handlers registered before it.
func (h *Hub) On(eventType string, handler Handler, opts ...SubscribeOption) *Hub {
	return h.OnEach([]string{eventType}, handler, opts...)
}

// OnEach registers handler for every event type in eventTypes. Each type is
// handled as by On. Empty types are ignored.
func (h *Hub) OnEach(eventTypes []string, handler Handler, opts ...SubscribeOption) *Hub {
	if handler == nil {
		return h
	}

	config := newSubscriptionConfig(opts)
	hc := h.cfg()

	for _, eventType := range eventTypes {
		if eventType == "" {
			continue
		}
		if h.events == nil {
			h.events = make(map[string][]*subscription)
		}

		subs := h.events[eventType]
		if indexOf(subs, handler, config.Receiver) >= 0 {
			continue
		}

		sub := &subscription{
			id:        hc.newID(),
			eventType: eventType,
			handler:   handler,
			receiver:  config.Receiver,
			once:      config.Once,
		}
		h.events[eventType] = append(subs, sub)

		hc.logger.Debug("event handler registered",
			"type", eventType,
			"subscription", sub.id,
			"once", sub.once,
		)
	}

	return h
}

// Off removes handlers and returns the hub.
//
// With an empty event type every subscription is dropped. With a nil handler
// every subscription of the type is dropped. Otherwise the subscriptions of the
// type matching the (handler, receiver) pair are removed. Unknown types and
// handlers are ignored.
func (h *Hub) Off(eventType string, handler Handler, opts ...SubscribeOption) *Hub {
	if h.events == nil {
		return h
	}
	logger := h.cfg().logger

	if eventType == "" {
		for _, subs := range h.events {
			markRemoved(subs)
		}
		h.events = nil
		logger.Debug("all event handlers removed")
		return h
	}

	subs, ok := h.events[eventType]
	if !ok {
		return h
	}

	if handler == nil {
		markRemoved(subs)
		clear(subs)
		h.events[eventType] = subs[:0]
		logger.Debug("event handlers removed", "type", eventType, "count", len(subs))
		return h
	}

	receiver := newSubscriptionConfig(opts).Receiver
	removed := 0
	for i := len(subs) - 1; i >= 0; i-- {
		if subs[i].matches(handler, receiver) {
			subs[i].removed = true
			subs = slices.Delete(subs, i, i+1)
			removed++
		}
	}
	h.events[eventType] = subs

	if removed > 0 {
		logger.Debug("event handler removed", "type", eventType, "count", removed)
	}
	return h
}

// Emit dispatches an event to the handlers registered for its type.
//
// If event is a string, handlers receive a *Data holding the type, params and
// the first param. Otherwise event must carry its type (see TypeOf); it is
// passed to handlers unchanged and params are ignored. Events without a type,
// and types without handlers, are ignored.
//
// Handlers run in registration order with their receivers. Handlers added
// during the pass do not run in it, and handlers removed during the pass by an
// earlier handler are skipped. Once subscriptions that ran are removed when the
// pass ends, including when it ends early.
//
// The first handler error ends the pass and is returned as a *HandlerError.
// A cancelled context ends the pass with the context's error.
func (h *Hub) Emit(ctx context.Context, event any, params ...any) (err error) {
	eventType := TypeOf(event)
	if eventType == "" {
		return nil
	}
	h.stats.emits.Add(1)

	if h.events == nil {
		return nil
	}
	current := h.events[eventType]
	if !hasLive(current) {
		return nil
	}

	// Only subscriptions present now take part in this pass.
	pass := slices.Clone(current)

	payload := event
	if _, ok := event.(string); ok {
		payload = newData(eventType, params)
	}

	hc := h.cfg()
	h.stats.dispatches.Add(1)
	ctx = hc.observer.EmitStarted(ctx, eventType, len(pass))

	invoked, spent := 0, 0
	defer func() {
		if spent > 0 {
			h.removeSpent(eventType)
		}
		hc.observer.EmitFinished(ctx, eventType, invoked, err)
		hc.logger.Debug("event emitted",
			"type", eventType,
			"candidates", len(pass),
			"invoked", invoked,
		)
	}()

	for _, sub := range pass {
		if !sub.live() {
			continue
		}
		if sub.once {
			sub.spent = true
			spent++
		}

		result := h.dispatcher.Dispatch(ctx, payload, sub)
		if !result.Ran() {
			if sub.once {
				sub.spent = false
				spent--
			}
			return result.Err
		}

		invoked++
		hc.observer.HandlerFinished(ctx, Invocation{
			Type:           eventType,
			SubscriptionID: sub.id,
			Once:           sub.once,
			Duration:       result.Duration,
			Err:            result.Err,
		})

		if result.Outcome == dispatch.Failed {
			return &HandlerError{
				Type:           eventType,
				SubscriptionID: sub.id,
				Err:            result.Err,
			}
		}
	}

	return nil
}

// removeSpent splices invoked once subscriptions out of the type's list,
// highest position first so earlier positions stay valid.
func (h *Hub) removeSpent(eventType string) {
	subs := h.events[eventType]

	var positions []int
	for i, sub := range subs {
		if sub.spent {
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		return
	}

	for i := len(positions) - 1; i >= 0; i-- {
		p := positions[i]
		subs[p].removed = true
		subs = slices.Delete(subs, p, p+1)
	}
	h.events[eventType] = subs
	h.stats.onceRemoved.Add(uint64(len(positions)))
}

// Subscriptions returns the live subscriptions of a type in dispatch order.
// An empty type lists every type, ordered by type name.
func (h *Hub) Subscriptions(eventType string) []SubscriptionInfo {
	if h.events == nil {
		return nil
	}

	types := []string{eventType}
	if eventType == "" {
		types = h.Types()
	}

	var result []SubscriptionInfo
	for _, t := range types {
		for _, sub := range h.events[t] {
			if sub.live() {
				result = append(result, sub.info())
			}
		}
	}
	return result
}

// Types returns the event types that have live subscriptions, sorted.
func (h *Hub) Types() []string {
	if h.events == nil {
		return nil
	}

	types := make([]string, 0, len(h.events))
	for t, subs := range h.events {
		if hasLive(subs) {
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

// Stats returns current hub statistics.
func (h *Hub) Stats() Stats {
	live := 0
	for _, subs := range h.events {
		for _, sub := range subs {
			if sub.live() {
				live++
			}
		}
	}

	totals := h.dispatcher.Totals()
	return Stats{
		Emits:         h.stats.emits.Load(),
		Dispatches:    h.stats.dispatches.Load(),
		Invocations:   totals.Ran(),
		HandlerErrors: totals.Failed,
		HandlerTime:   totals.Elapsed,
		OnceRemoved:   h.stats.onceRemoved.Load(),
		Subscriptions: live,
	}
}

// indexOf returns the position of the live subscription with the given
// identity pair, or -1.
func indexOf(subs []*subscription, handler Handler, receiver any) int {
	for i := len(subs) - 1; i >= 0; i-- {
		if subs[i].live() && subs[i].matches(handler, receiver) {
			return i
		}
	}
	return -1
}

func hasLive(subs []*subscription) bool {
	for _, sub := range subs {
		if sub.live() {
			return true
		}
	}
	return false
}

func markRemoved(subs []*subscription) {
	for _, sub := range subs {
		sub.removed = true
	}
}
