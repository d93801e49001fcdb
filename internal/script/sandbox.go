package script

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/zjrosen/xshell/internal/log"
)

// newSandbox opens a state with only the base, table, string and math
// libraries and without the functions that load code from outside.
func newSandbox(name string) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, fn := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(fn, lua.LNil)
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		log.Debug(log.CatScript, "print", "script", name, "msg", strings.Join(parts, "\t"))
		return 0
	}))
	return L
}
