// Package scenario replays declarative hub scenarios.
//
// A scenario is a YAML or TOML file listing operations against a fresh hub.
// Handlers and receivers are referred to by name; a handler records every
// call it receives and may fail or run nested steps while it is dispatched.
//
//	name: once handlers
//	handlers:
//	  rearm:
//	    steps:
//	      - on: {type: tick, handler: rearm, once: true}
//	steps:
//	  - on: {type: tick, handler: rearm, once: true}
//	  - emit: {type: tick, params: [1]}
//	  - expect:
//	      calls: [rearm]
//	      event: {type: tick, data: 1}
//	  - has: {type: tick, handler: rearm, want: true}
//
// Every expect step is a checkpoint: its calls list is matched against the
// calls recorded since the previous checkpoint. Event paths use gjson syntax
// and are evaluated against the JSON form of the last event a handler
// received.
package scenario
