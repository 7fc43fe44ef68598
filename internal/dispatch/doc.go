// Package dispatch executes event handlers on behalf of the hub.
//
// Handlers run synchronously in the caller's goroutine. Each call is timed
// and classified as succeeded, failed or skipped, but handlers are not
// isolated from each other: the caller decides what a failure means (the hub
// ends the pass), and panics unwind through Dispatch untouched.
//
//	var d dispatch.SyncDispatcher
//	if res := d.Dispatch(ctx, event, handler); res.Err != nil {
//	    return res.Err
//	}
package dispatch
