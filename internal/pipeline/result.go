package pipeline

import (
	"errors"
	"slices"
)

// errNoError stands in when a caller builds a failed Result from a nil error.
var errNoError = errors.New("pipeline failed without an error")

// Result holds either the generated assembly lines or the error that stopped
// the pipeline, never both and never neither.
type Result struct {
	ok    bool
	lines []string
	err   error
}

// Succeeded returns a successful Result. A nil slice is an empty program.
func Succeeded(lines []string) Result {
	if lines == nil {
		lines = []string{}
	}
	return Result{ok: true, lines: lines}
}

// Failed returns a failed Result. A nil err is replaced with a generic error
// so the failure is never silent.
func Failed(err error) Result {
	if err == nil {
		err = errNoError
	}
	return Result{err: err}
}

// OK reports whether the pipeline succeeded.
func (r Result) OK() bool {
	return r.ok
}

// Lines returns a copy of the assembly lines, or nil on failure.
func (r Result) Lines() []string {
	if !r.ok {
		return nil
	}
	return slices.Clone(r.lines)
}

// Err returns the failure, or nil on success.
func (r Result) Err() error {
	if r.ok {
		return nil
	}
	return r.err
}

// Unwrap returns the result as a conventional (lines, error) pair.
func (r Result) Unwrap() ([]string, error) {
	return r.Lines(), r.Err()
}
