package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{Succeeded, "succeeded"},
		{Failed, "failed"},
		{Skipped, "skipped"},
		{Outcome(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}

func TestExecutor_Execute(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0), step: 3 * time.Millisecond}
	exec := NewExecutor(WithClock(clock.Now))
	boom := errors.New("boom")

	var got any
	ok := HandlerFunc(func(ctx context.Context, event any) error {
		got = event
		return nil
	})
	fail := HandlerFunc(func(ctx context.Context, event any) error { return boom })

	res := exec.Execute(context.Background(), "payload", ok)
	if res.Outcome != Succeeded || res.Err != nil || !res.Ran() {
		t.Errorf("Execute(ok) = %+v, want success", res)
	}
	if res.Duration != 3*time.Millisecond {
		t.Errorf("Duration = %v, want 3ms", res.Duration)
	}
	if got != "payload" {
		t.Errorf("handler received %v, want payload", got)
	}

	res = exec.Execute(context.Background(), nil, fail)
	if res.Outcome != Failed || !errors.Is(res.Err, boom) {
		t.Errorf("Execute(fail) = %+v, want failure with boom", res)
	}
}

func TestExecutor_SkipsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	res := NewExecutor().Execute(ctx, nil, HandlerFunc(func(ctx context.Context, event any) error {
		called = true
		return nil
	}))

	if called {
		t.Error("handler ran with a cancelled context")
	}
	if res.Outcome != Skipped || res.Ran() || !errors.Is(res.Err, context.Canceled) {
		t.Errorf("Execute() = %+v, want skipped with context.Canceled", res)
	}
}

func TestExecutor_PanicPropagates(t *testing.T) {
	defer func() {
		if r := recover(); r != "bad" {
			t.Errorf("recover() = %v, want bad", r)
		}
	}()

	NewExecutor().Execute(context.Background(), nil, HandlerFunc(func(ctx context.Context, event any) error {
		panic("bad")
	}))
	t.Error("Execute returned after a panicking handler")
}

func TestSyncDispatcher_ZeroValue(t *testing.T) {
	var d SyncDispatcher

	res := d.Dispatch(context.Background(), nil, HandlerFunc(func(ctx context.Context, event any) error { return nil }))
	if res.Outcome != Succeeded {
		t.Errorf("Dispatch() = %+v, want success", res)
	}
	if got := d.Totals().Succeeded; got != 1 {
		t.Errorf("Succeeded = %d, want 1", got)
	}
}

func TestSyncDispatcher_Totals(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0), step: 10 * time.Millisecond}
	d := NewSyncDispatcher(WithExecutor(NewExecutor(WithClock(clock.Now))))

	ok := HandlerFunc(func(ctx context.Context, event any) error { return nil })
	fail := HandlerFunc(func(ctx context.Context, event any) error { return errors.New("x") })

	d.Dispatch(context.Background(), nil, ok)
	d.Dispatch(context.Background(), nil, ok)
	d.Dispatch(context.Background(), nil, fail)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Dispatch(ctx, nil, ok)

	totals := d.Totals()
	want := Totals{Succeeded: 2, Failed: 1, Skipped: 1, Elapsed: 30 * time.Millisecond}
	if totals != want {
		t.Errorf("Totals() = %+v, want %+v", totals, want)
	}
	if totals.Ran() != 3 {
		t.Errorf("Ran() = %d, want 3", totals.Ran())
	}
	if totals.Mean() != 10*time.Millisecond {
		t.Errorf("Mean() = %v, want 10ms", totals.Mean())
	}
}

func TestTotals_MeanWithoutCalls(t *testing.T) {
	if got := (Totals{Skipped: 4}).Mean(); got != 0 {
		t.Errorf("Mean() = %v, want 0", got)
	}
}
