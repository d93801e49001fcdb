package script

import (
	"errors"

	lua "github.com/yuin/gopher-lua"
)

// AST is the value a script's parse function returned.
type AST struct {
	value lua.LValue
	err   error
}

// Err returns the error embedded in the ast, if any.
func (a *AST) Err() error {
	if a == nil {
		return nil
	}
	return a.err
}

// Value returns the raw Lua value.
func (a *AST) Value() lua.LValue {
	return a.value
}

// Error is a failure reported by a script, either returned or raised.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return e.Message
}

// Location returns the position the script reported, or zeros.
func (e *Error) Location() (line, column int) {
	return e.Line, e.Column
}

// errorFrom converts a Lua error value into an *Error.
func errorFrom(v lua.LValue) *Error {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return &Error{Message: v.String()}
	}
	e := &Error{Message: lua.LVAsString(tbl.RawGetString("message"))}
	if e.Message == "" {
		e.Message = "script error"
	}
	if n, ok := tbl.RawGetString("line").(lua.LNumber); ok {
		e.Line = int(n)
	}
	if n, ok := tbl.RawGetString("column").(lua.LNumber); ok {
		e.Column = int(n)
	}
	return e
}

// raised converts an error thrown inside a Lua call.
func raised(err error) error {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Type == lua.ApiErrorRun {
		return errorFrom(apiErr.Object)
	}
	return &Error{Message: err.Error()}
}
