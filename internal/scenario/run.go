package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dshills/eventhub"
)

// MaxDepth bounds nested dispatch through handler steps.
const MaxDepth = 32

// ErrTooDeep is returned by a handler whose steps nest dispatch beyond MaxDepth.
var ErrTooDeep = errors.New("nested dispatch too deep")

// Receiver is the value registered for a named receiver.
type Receiver struct {
	Name string
}

// Option configures Run.
type Option func(*runner)

// WithHub runs the scenario against hub instead of a fresh one.
func WithHub(hub *eventhub.Hub) Option {
	return func(r *runner) {
		if hub != nil {
			r.hub = hub
		}
	}
}

// WithLogger sets the logger for step records.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.logger = l
		}
	}
}

type runner struct {
	sc     *Scenario
	hub    *eventhub.Hub
	logger *slog.Logger
	report *Report

	handlers  map[string]*eventhub.FuncHandler
	receivers map[string]*Receiver

	// calls recorded since the last checkpoint
	calls []string

	lastEvent   any
	lastEmitted any

	depth int
}

// Run executes sc and reports every failed check. The returned error is
// reserved for scenarios that cannot run: invalid structure or a cancelled
// context.
func Run(ctx context.Context, sc *Scenario, opts ...Option) (*Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	r := &runner{
		sc:        sc,
		logger:    slog.New(slog.DiscardHandler),
		report:    &Report{Name: sc.Name},
		handlers:  make(map[string]*eventhub.FuncHandler),
		receivers: make(map[string]*Receiver),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.hub == nil {
		r.hub = eventhub.New(eventhub.WithLogger(r.logger))
	}

	r.logger.Info("scenario started", "scenario", sc.Name, "steps", len(sc.Steps))

	if err := r.runSteps(ctx, "", sc.Steps); err != nil {
		return nil, err
	}

	r.report.Stats = r.hub.Stats()
	r.logger.Info("scenario finished",
		"scenario", sc.Name,
		"steps", r.report.Steps,
		"failures", len(r.report.Failures),
	)
	return r.report, nil
}

func (r *runner) runSteps(ctx context.Context, prefix string, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		where := fmt.Sprintf("%s%d", prefix, i+1)
		r.report.Steps++
		r.runStep(ctx, where, step)
	}
	return nil
}

func (r *runner) runStep(ctx context.Context, where string, step Step) {
	op, _ := step.op()
	r.logger.Debug("scenario step", "step", where, "op", op)

	switch op {
	case "on":
		s := step.On
		types := s.Types
		if s.Type != "" {
			types = append([]string{s.Type}, types...)
		}
		opts := r.receiverOpts(s.Receiver)
		if s.Once {
			opts = append(opts, eventhub.WithOnce())
		}
		r.hub.OnEach(types, r.handler(s.Handler), opts...)

	case "off":
		s := step.Off
		r.hub.Off(s.Type, r.handlerOrNil(s.Handler), r.receiverOpts(s.Receiver)...)

	case "has":
		s := step.Has
		got := r.hub.HasHandler(s.Type, r.handlerOrNil(s.Handler), r.receiverOpts(s.Receiver)...)
		if got != s.Want {
			r.failf(where, "has(%q, %q, %q) = %v, want %v", s.Type, s.Handler, s.Receiver, got, s.Want)
		}

	case "emit":
		r.emit(ctx, where, step.Emit)

	case "expect":
		r.expect(where, step.Expect)
		r.calls = r.calls[:0]
	}
}

func (r *runner) emit(ctx context.Context, where string, s *EmitStep) {
	var err error
	if s.Event != nil {
		r.lastEmitted = s.Event
		err = r.hub.Emit(ctx, s.Event)
	} else {
		err = r.hub.Emit(ctx, s.Type, s.Params...)
	}

	switch {
	case err == nil && s.Error != "":
		r.failf(where, "emit succeeded, want error containing %q", s.Error)
	case err != nil && s.Error == "":
		r.failf(where, "emit failed: %v", err)
	case err != nil && !strings.Contains(err.Error(), s.Error):
		r.failf(where, "emit error %q does not contain %q", err.Error(), s.Error)
	}
}

// handler returns the named handler, creating it on first use.
func (r *runner) handler(name string) *eventhub.FuncHandler {
	if h, ok := r.handlers[name]; ok {
		return h
	}

	def := r.sc.Handlers[name]
	h := eventhub.Func(func(ctx context.Context, receiver any, event any) error {
		r.record(name, receiver, event)

		if len(def.Steps) > 0 {
			if r.depth >= MaxDepth {
				return ErrTooDeep
			}
			r.depth++
			err := r.runSteps(ctx, fmt.Sprintf("%s/", name), def.Steps)
			r.depth--
			if err != nil {
				return err
			}
		}

		if def.Fail != "" {
			return errors.New(def.Fail)
		}
		return nil
	})
	r.handlers[name] = h
	return h
}

// handlerOrNil returns nil for an empty name, meaning any handler.
func (r *runner) handlerOrNil(name string) eventhub.Handler {
	if name == "" {
		return nil
	}
	return r.handler(name)
}

func (r *runner) receiverOpts(name string) []eventhub.SubscribeOption {
	if name == "" {
		return nil
	}
	rcv, ok := r.receivers[name]
	if !ok {
		rcv = &Receiver{Name: name}
		r.receivers[name] = rcv
	}
	return []eventhub.SubscribeOption{eventhub.WithReceiver(rcv)}
}

func (r *runner) record(name string, receiver any, event any) {
	call := name
	if rcv, ok := receiver.(*Receiver); ok {
		call = fmt.Sprintf("%s(%s)", name, rcv.Name)
	}
	r.calls = append(r.calls, call)
	r.report.Calls++
	r.lastEvent = event
}

func (r *runner) failf(where, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.report.Failures = append(r.report.Failures, Failure{Step: where, Message: msg})
	r.logger.Warn("scenario check failed", "scenario", r.sc.Name, "step", where, "message", msg)
}
