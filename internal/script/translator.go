package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/zjrosen/xshell/internal/log"
	"github.com/zjrosen/xshell/internal/pipeline"
	"github.com/zjrosen/xshell/internal/xsharp"
)

// DefaultCallTimeout bounds a single parse or generate call.
const DefaultCallTimeout = 10 * time.Second

// Translator is a Lua-backed parser and generator. Calls are serialised:
// a Lua state must only be used by one goroutine at a time.
type Translator struct {
	name    string
	timeout time.Duration

	mu       sync.Mutex
	L        *lua.LState
	parse    *lua.LFunction
	generate *lua.LFunction
	closed   bool
}

// Option configures a Translator.
type Option func(*Translator)

// WithCallTimeout sets the per-call timeout. Zero disables it.
func WithCallTimeout(d time.Duration) Option {
	return func(t *Translator) {
		t.timeout = d
	}
}

var (
	_ pipeline.Parser[[]xsharp.Token, *AST] = (*Translator)(nil)
	_ pipeline.Generator[*AST]              = (*Translator)(nil)
)

// Load reads and runs a translator script from path.
func Load(path string, opts ...Option) (*Translator, error) {
	src, err := os.ReadFile(path) //nolint:gosec // G304: path comes from user config
	if err != nil {
		return nil, fmt.Errorf("reading translator script: %w", err)
	}
	return LoadString(filepath.Base(path), string(src), opts...)
}

// LoadString runs src as a translator script named name.
func LoadString(name, src string, opts ...Option) (*Translator, error) {
	t := &Translator{name: name, timeout: DefaultCallTimeout}
	for _, opt := range opts {
		opt(t)
	}

	L := newSandbox(name)
	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("script %s: %w", name, err)
	}

	parse, ok := L.GetGlobal("parse").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("script %s: global function parse is not defined", name)
	}
	generate, ok := L.GetGlobal("generate").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("script %s: global function generate is not defined", name)
	}

	t.L, t.parse, t.generate = L, parse, generate
	log.Debug(log.CatScript, "translator loaded", "script", name)
	return t, nil
}

// Name returns the script name.
func (t *Translator) Name() string {
	return t.name
}

// Close releases the Lua state.
func (t *Translator) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.L.Close()
		t.closed = true
	}
}

// Parse calls the script's parse function. An ast carrying an error field is
// returned together with that error.
func (t *Translator) Parse(ctx context.Context, tokens []xsharp.Token) (*AST, error) {
	rets, err := t.call(ctx, "parse", t.parse, tokensToLua(t.L, tokens))
	if err != nil {
		return nil, err
	}
	value, errValue := rets[0], rets[1]
	if errValue != lua.LNil {
		return nil, errorFrom(errValue)
	}
	if value == lua.LNil {
		return nil, &Error{Message: "parse returned neither an ast nor an error"}
	}

	ast := &AST{value: value}
	if tbl, ok := value.(*lua.LTable); ok {
		if embedded := tbl.RawGetString("error"); embedded != lua.LNil && embedded != lua.LFalse {
			ast.err = errorFrom(embedded)
		}
	}
	return ast, ast.err
}

// Generate calls the script's generate function.
func (t *Translator) Generate(ctx context.Context, ast *AST, opts pipeline.Options) ([]string, error) {
	if ast == nil {
		return nil, &Error{Message: "generate called without an ast"}
	}

	options := t.L.NewTable()
	options.RawSetString("suppress_trailing_instruction", lua.LBool(opts.SuppressTrailingInstruction))

	rets, err := t.call(ctx, "generate", t.generate, ast.value, options)
	if err != nil {
		return nil, err
	}
	value, errValue := rets[0], rets[1]
	if errValue != lua.LNil {
		return nil, errorFrom(errValue)
	}

	tbl, ok := value.(*lua.LTable)
	if !ok {
		return nil, &Error{Message: fmt.Sprintf("generate returned %s, want a table of lines", value.Type())}
	}
	lines := make([]string, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		switch v := tbl.RawGetInt(i).(type) {
		case lua.LString:
			lines = append(lines, string(v))
		case lua.LNumber:
			lines = append(lines, v.String())
		default:
			return nil, &Error{Message: fmt.Sprintf("generate line %d is %s, want a string", i, v.Type())}
		}
	}
	return lines, nil
}

// call runs fn under the lock and returns exactly two results.
func (t *Translator) call(ctx context.Context, name string, fn *lua.LFunction, args ...lua.LValue) ([2]lua.LValue, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return [2]lua.LValue{}, fmt.Errorf("script %s: translator is closed", t.name)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	t.L.SetContext(ctx)
	defer t.L.RemoveContext()

	start := time.Now()
	err := t.L.CallByParam(lua.P{Fn: fn, NRet: 2, Protect: true}, args...)
	if err != nil {
		log.Debug(log.CatScript, "lua call raised", "script", t.name, "func", name, "error", err)
		return [2]lua.LValue{}, raised(err)
	}
	rets := [2]lua.LValue{t.L.Get(-2), t.L.Get(-1)}
	t.L.Pop(2)
	log.Debug(log.CatScript, "lua call returned", "script", t.name, "func", name, "duration", time.Since(start))
	return rets, nil
}

func tokensToLua(L *lua.LState, tokens []xsharp.Token) *lua.LTable {
	tbl := L.CreateTable(len(tokens), 0)
	for _, tok := range tokens {
		entry := L.CreateTable(0, 4)
		entry.RawSetString("type", lua.LString(tok.Type.String()))
		switch {
		case tok.Type == xsharp.NUM:
			if n, err := strconv.ParseFloat(tok.Literal, 64); err == nil {
				entry.RawSetString("value", lua.LNumber(n))
			} else {
				entry.RawSetString("value", lua.LString(tok.Literal))
			}
		case tok.Literal != "":
			entry.RawSetString("value", lua.LString(tok.Literal))
		}
		entry.RawSetString("line", lua.LNumber(tok.Line))
		entry.RawSetString("column", lua.LNumber(tok.Column))
		tbl.Append(entry)
	}
	return tbl
}
