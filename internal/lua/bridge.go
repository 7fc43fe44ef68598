package lua

import (
	"context"
	"runtime"
	"sync"
	"weak"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/eventhub"
)

// GlobalName is the name of the Lua table installed by a Bridge.
const GlobalName = "hub"

// TableEvent is the event value Go handlers receive when Lua emits a table.
type TableEvent struct {
	// Type is the table's "type" field.
	Type string

	// Table is the emitted table. Lua handlers receive it unchanged.
	Table *lua.LTable
}

// EventType implements eventhub.Typed.
func (e *TableEvent) EventType() string {
	return e.Type
}

// Fields converts the table to a Go map.
func (e *TableEvent) Fields() map[string]any {
	m, _ := ToGoValue(e.Table).(map[string]any)
	return m
}

// Bridge exposes a hub to a Lua state.
type Bridge struct {
	L   *lua.LState
	hub *eventhub.Hub
	mod *lua.LTable

	// handlers gives every Lua function one Go handler, so a function keeps
	// its identity across hub.on, hub.off and hub.has.
	handlers map[*lua.LFunction]*eventhub.FuncHandler

	// tables holds the table built for each *eventhub.Data, so every handler
	// of a pass sees the same table even when handlers emit in between.
	// Entries go away with their Data.
	tablesMu sync.Mutex
	tables   map[weak.Pointer[eventhub.Data]]*lua.LTable
}

// NewBridge creates a bridge between L and hub.
func NewBridge(L *lua.LState, hub *eventhub.Hub) *Bridge {
	return &Bridge{
		L:        L,
		hub:      hub,
		handlers: make(map[*lua.LFunction]*eventhub.FuncHandler),
		tables:   make(map[weak.Pointer[eventhub.Data]]*lua.LTable),
	}
}

// Install sets the global hub table.
func (b *Bridge) Install() {
	b.mod = b.L.SetFuncs(b.L.NewTable(), map[string]lua.LGFunction{
		"on":   b.on,
		"off":  b.off,
		"emit": b.emit,
		"has":  b.has,
	})
	b.L.SetGlobal(GlobalName, b.mod)
}

// Close removes every subscription the bridge registered. The hub must not
// call into the Lua state after it is closed.
func (b *Bridge) Close() {
	owned := make(map[eventhub.Handler]bool, len(b.handlers))
	for _, h := range b.handlers {
		owned[h] = true
	}
	for _, eventType := range b.hub.Types() {
		for _, sub := range b.hub.Subscriptions(eventType) {
			if owned[sub.Handler] {
				b.hub.Off(eventType, sub.Handler, eventhub.WithReceiver(sub.Receiver))
			}
		}
	}
	clear(b.handlers)

	b.tablesMu.Lock()
	clear(b.tables)
	b.tablesMu.Unlock()
}

// handler returns the Go handler for fn, creating it on first use.
func (b *Bridge) handler(fn *lua.LFunction) *eventhub.FuncHandler {
	if h, ok := b.handlers[fn]; ok {
		return h
	}
	h := eventhub.Func(func(ctx context.Context, receiver any, event any) error {
		b.L.Push(fn)
		nargs := 1
		if receiver != nil {
			b.L.Push(ToLuaValue(b.L, receiver))
			nargs++
		}
		b.L.Push(b.eventValue(event))
		return b.L.PCall(nargs, 0, nil)
	})
	b.handlers[fn] = h
	return h
}

// eventValue converts an event for Lua handlers.
func (b *Bridge) eventValue(event any) lua.LValue {
	switch ev := event.(type) {
	case *TableEvent:
		return ev.Table
	case *eventhub.Data:
		return b.dataTable(ev)
	}
	return ToLuaValue(b.L, event)
}

// dataTable returns the table for ev, building it on first use.
func (b *Bridge) dataTable(ev *eventhub.Data) *lua.LTable {
	key := weak.Make(ev)

	b.tablesMu.Lock()
	t, ok := b.tables[key]
	b.tablesMu.Unlock()
	if ok {
		return t
	}

	t = b.L.NewTable()
	t.RawSetString("type", lua.LString(ev.Type))
	t.RawSetString("params", ToLuaValue(b.L, ev.Params))
	t.RawSetString("data", ToLuaValue(b.L, ev.Data))

	b.tablesMu.Lock()
	b.tables[key] = t
	b.tablesMu.Unlock()

	// Cleanups run on their own goroutine, hence the mutex.
	runtime.AddCleanup(ev, b.forget, key)
	return t
}

func (b *Bridge) forget(key weak.Pointer[eventhub.Data]) {
	b.tablesMu.Lock()
	delete(b.tables, key)
	b.tablesMu.Unlock()
}

// hub.on(type | {types}, fn [, receiver [, {once = true}]])
func (b *Bridge) on(L *lua.LState) int {
	types := checkTypes(L, 1)
	fn := L.CheckFunction(2)
	opts := receiverOpt(L, 3)
	if o, ok := L.Get(4).(*lua.LTable); ok && lua.LVAsBool(o.RawGetString("once")) {
		opts = append(opts, eventhub.WithOnce())
	}

	b.hub.OnEach(types, b.handler(fn), opts...)
	L.Push(b.mod)
	return 1
}

// hub.off([type [, fn [, receiver]]])
func (b *Bridge) off(L *lua.LState) int {
	eventType := L.OptString(1, "")

	if L.Get(2) == lua.LNil {
		b.hub.Off(eventType, nil)
	} else if h, ok := b.handlers[L.CheckFunction(2)]; ok {
		b.hub.Off(eventType, h, receiverOpt(L, 3)...)
	}

	L.Push(b.mod)
	return 1
}

// hub.has([type [, fn [, receiver]]])
func (b *Bridge) has(L *lua.LState) int {
	eventType := L.OptString(1, "")

	var found bool
	if L.Get(2) == lua.LNil {
		found = b.hub.HasHandler(eventType, nil)
	} else if h, ok := b.handlers[L.CheckFunction(2)]; ok {
		found = b.hub.HasHandler(eventType, h, receiverOpt(L, 3)...)
	}

	L.Push(lua.LBool(found))
	return 1
}

// hub.emit(type, ...) or hub.emit({type = ..., ...})
func (b *Bridge) emit(L *lua.LState) int {
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	switch ev := L.Get(1).(type) {
	case lua.LString:
		params := make([]any, 0, L.GetTop()-1)
		for i := 2; i <= L.GetTop(); i++ {
			params = append(params, ToGoValue(L.Get(i)))
		}
		err = b.hub.Emit(ctx, string(ev), params...)
	case *lua.LTable:
		eventType, _ := ev.RawGetString("type").(lua.LString)
		err = b.hub.Emit(ctx, &TableEvent{Type: string(eventType), Table: ev})
	default:
		L.ArgError(1, "event type or table expected")
		return 0
	}

	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(b.mod)
	return 1
}

// checkTypes reads a type name or a sequence of type names.
func checkTypes(L *lua.LState, n int) []string {
	switch v := L.Get(n).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		types := make([]string, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			s, ok := v.RawGetInt(i).(lua.LString)
			if !ok {
				L.ArgError(n, "event types must be strings")
				return nil
			}
			types = append(types, string(s))
		}
		return types
	}
	L.TypeError(n, lua.LTString)
	return nil
}

// receiverOpt reads an optional receiver argument.
func receiverOpt(L *lua.LState, n int) []eventhub.SubscribeOption {
	if rcv := L.Get(n); rcv != lua.LNil {
		return []eventhub.SubscribeOption{eventhub.WithReceiver(rcv)}
	}
	return nil
}

// RunFile runs the Lua script at path against hub. Subscriptions the script
// leaves behind are removed before the state is closed.
func RunFile(ctx context.Context, path string, hub *eventhub.Hub, opts ...StateOption) error {
	state, err := NewState(opts...)
	if err != nil {
		return err
	}
	defer state.Close()

	bridge := NewBridge(state.L, hub)
	bridge.Install()
	defer bridge.Close()

	return state.DoFile(ctx, path)
}
