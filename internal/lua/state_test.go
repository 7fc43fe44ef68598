package lua

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func newTestState(t *testing.T, opts ...StateOption) *State {
	t.Helper()
	state, err := NewState(opts...)
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	t.Cleanup(func() { state.Close() })
	return state
}

func TestStateDoString(t *testing.T) {
	state := newTestState(t)

	if err := state.DoString(context.Background(), `x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	num, ok := state.GetGlobal("x").(glua.LNumber)
	if !ok {
		t.Fatalf("x is not a number, got %T", state.GetGlobal("x"))
	}
	if float64(num) != 2 {
		t.Errorf("x = %v, want 2", num)
	}
}

func TestStateDoStringSyntaxError(t *testing.T) {
	state := newTestState(t)

	err := state.DoString(context.Background(), `invalid lua code !!!`)
	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("DoString() error = %v, want *ScriptError", err)
	}
	if scriptErr.Source != "chunk" {
		t.Errorf("Source = %q, want %q", scriptErr.Source, "chunk")
	}
}

func TestStateTimeout(t *testing.T) {
	state := newTestState(t, WithTimeout(50*time.Millisecond))

	err := state.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("DoString() error = %v, want deadline exceeded", err)
	}

	// The state stays usable after an interrupted call.
	if err := state.DoString(context.Background(), `y = 1`); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestStateCancelledContext(t *testing.T) {
	state := newTestState(t, WithTimeout(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := state.DoString(ctx, `while true do end`)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("DoString() error = %v, want context canceled", err)
	}
}

func TestStateClosed(t *testing.T) {
	state := newTestState(t)
	if err := state.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !state.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if err := state.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() error = %v, want ErrStateClosed", err)
	}
	if _, err := state.Call("f"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Call() error = %v, want ErrStateClosed", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNil {
		t.Errorf("GetGlobal() = %v, want nil", v)
	}
}

func TestStateCall(t *testing.T) {
	state := newTestState(t)
	if err := state.DoString(context.Background(), `
		function add(a, b) return a + b, "sum" end
		function none() end
		notfn = 3
	`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	results, err := state.Call("add", glua.LNumber(2), glua.LNumber(3))
	if err != nil {
		t.Fatalf("Call(add) error = %v", err)
	}
	if len(results) != 2 || results[0] != glua.LNumber(5) || results[1] != glua.LString("sum") {
		t.Errorf("Call(add) = %v, want [5 sum]", results)
	}

	results, err = state.Call("none")
	if err != nil || results == nil || len(results) != 0 {
		t.Errorf("Call(none) = %v, %v; want empty slice", results, err)
	}

	if _, err := state.Call("notfn"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(notfn) error = %v, want ErrNotFunction", err)
	}
	if _, err := state.Call("missing"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(missing) error = %v, want ErrNotFunction", err)
	}
}

func TestStateSetGlobal(t *testing.T) {
	state := newTestState(t)
	state.SetGlobal("name", glua.LString("hub"))

	if err := state.DoString(context.Background(), `assert(name == "hub")`); err != nil {
		t.Errorf("DoString() error = %v", err)
	}
}

func TestSandboxRemovesLoaders(t *testing.T) {
	state := newTestState(t)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "io", "os", "debug"} {
		if v := state.GetGlobal(name); v != glua.LNil {
			t.Errorf("global %q = %v, want nil", name, v)
		}
	}
}

func TestSandboxRequire(t *testing.T) {
	state := newTestState(t)

	if err := state.DoString(context.Background(), `
		local s = require("string")
		assert(s.upper("a") == "A")
	`); err != nil {
		t.Errorf("require(string) error = %v", err)
	}

	for _, mod := range []string{"os", "io", "debug", "socket"} {
		err := state.DoString(context.Background(), `require("`+mod+`")`)
		if err == nil || !strings.Contains(err.Error(), "not available") {
			t.Errorf("require(%q) error = %v, want not available", mod, err)
		}
	}
}

func TestSandboxPrint(t *testing.T) {
	var out bytes.Buffer
	state := newTestState(t, WithOutput(&out))

	if err := state.DoString(context.Background(), `print("a", 1, true) print()`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got, want := out.String(), "a\t1\ttrue\n\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
