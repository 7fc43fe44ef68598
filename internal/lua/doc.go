// Package lua scripts an event hub from Lua.
//
// A State is a sandboxed gopher-lua interpreter: only the base, table, string
// and math libraries are available, file loading functions are removed and
// require only resolves those libraries. A Bridge installs a global "hub"
// table bound to an *eventhub.Hub:
//
//	local function greet(ev)
//	    print("hello " .. ev.data)
//	end
//
//	hub.on("greet", greet)
//	hub.emit("greet", "world")
//	hub.off("greet", greet)
//	assert(not hub.has("greet"))
//
// Functions:
//
//	hub.on(type | {types}, fn [, receiver [, {once = true}]])  -> hub
//	hub.off([type [, fn [, receiver]]])                        -> hub
//	hub.emit(type, ...) | hub.emit({type = ..., ...})           -> hub
//	hub.has([type [, fn [, receiver]]])                        -> boolean
//
// A Lua function keeps its identity across calls, so registering the same
// function twice for a type is a no-op and hub.off removes it by reference.
// Handlers registered without a receiver are called as fn(event); with one,
// as fn(receiver, event).
//
// String emits reach Lua handlers as a table {type, params, data}. Table
// emits reach Lua handlers as the emitted table itself and Go handlers as a
// *TableEvent. A handler error aborts the pass and is raised as a Lua error
// from hub.emit.
//
// gopher-lua states are not goroutine-safe. A State and the handlers a Bridge
// registers must be used from one goroutine at a time.
package lua
