package lua

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is returned when a called global is not a function.
	ErrNotFunction = errors.New("lua value is not a function")
)

// ScriptError reports a failure while running Lua code.
type ScriptError struct {
	// Source names the file or chunk that failed.
	Source string

	// Err is the underlying gopher-lua or Go error.
	Err error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("lua %s: %v", e.Source, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
