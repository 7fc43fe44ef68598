package lua

import (
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts a Lua state to the libraries opened by NewState.
type Sandbox struct {
	L   *lua.LState
	out io.Writer
}

// removedGlobals can load code from disk or strings and bypass the sandbox.
var removedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"module",
}

// requirable lists the modules require may return.
var requirable = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
}

// NewSandbox creates a sandbox for L that prints to out.
func NewSandbox(L *lua.LState, out io.Writer) *Sandbox {
	return &Sandbox{L: L, out: out}
}

// Install applies the restrictions to the state.
func (s *Sandbox) Install() {
	for _, name := range removedGlobals {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.L.SetGlobal("print", s.L.NewFunction(s.print))
	s.L.SetGlobal("require", s.L.NewFunction(s.require))
}

// print writes its arguments tab-separated to the sandbox output.
func (s *Sandbox) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, top)
	for i := 1; i <= top; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	_, _ = io.WriteString(s.out, strings.Join(parts, "\t")+"\n")
	return 0
}

// require resolves only the already opened safe libraries.
func (s *Sandbox) require(L *lua.LState) int {
	name := L.CheckString(1)
	if !requirable[name] {
		L.RaiseError("module %q is not available", name)
		return 0
	}
	L.Push(L.GetGlobal(name))
	return 1
}
