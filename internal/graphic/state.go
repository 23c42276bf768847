package graphic

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// unsafeGlobals are removed from every state: they load code from disk
// or from strings at run time.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// newState creates a Lua state with only the base, table, string and
// math libraries. print goes to logf.
func newState(logf func(msg string)) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		logf(strings.Join(parts, "\t"))
		return 0
	}))
	return L
}
