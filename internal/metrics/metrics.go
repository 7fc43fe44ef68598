// Package metrics exports hub activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/eventhub"
)

// Invocation results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Observer is an eventhub.Observer that records dispatch passes.
type Observer struct {
	registry *prometheus.Registry

	emits       *prometheus.CounterVec
	emitErrors  *prometheus.CounterVec
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

var _ eventhub.Observer = (*Observer)(nil)

// New creates an observer with its own registry. The registry also carries
// the Go runtime and process collectors.
func New() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		emits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_emits_total",
			Help: "Dispatch passes by event type.",
		}, []string{"type"}),
		emitErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_emit_errors_total",
			Help: "Dispatch passes aborted by a handler error or cancellation.",
		}, []string{"type"}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_invocations_total",
			Help: "Handler invocations by event type and result.",
		}, []string{"type", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eventhub_handler_duration_seconds",
			Help:    "Handler run time by event type.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"type"}),
	}

	o.registry.MustRegister(
		o.emits,
		o.emitErrors,
		o.invocations,
		o.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return o
}

// EmitStarted implements eventhub.Observer.
func (o *Observer) EmitStarted(ctx context.Context, eventType string, _ int) context.Context {
	o.emits.WithLabelValues(eventType).Inc()
	return ctx
}

// HandlerFinished implements eventhub.Observer.
func (o *Observer) HandlerFinished(_ context.Context, inv eventhub.Invocation) {
	result := ResultOK
	if inv.Err != nil {
		result = ResultError
	}
	o.invocations.WithLabelValues(inv.Type, result).Inc()
	o.duration.WithLabelValues(inv.Type).Observe(inv.Duration.Seconds())
}

// EmitFinished implements eventhub.Observer.
func (o *Observer) EmitFinished(_ context.Context, eventType string, _ int, err error) {
	if err != nil {
		o.emitErrors.WithLabelValues(eventType).Inc()
	}
}

// Registry returns the registry holding the observer's collectors.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

// Serve exposes Handler on addr under /metrics until ctx is done.
func (o *Observer) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", o.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
