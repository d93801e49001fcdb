package pipeline

import (
	"errors"
	"fmt"
)

// Position is a 1-based line and column in the source.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error is the failure of one stage.
type Error struct {
	Stage    Stage
	SourceID string
	// Message is the stage error's text, unchanged.
	Message string
	// Pos is set when the stage error implements Locator.
	Pos *Position
	Err error
}

func (e *Error) Error() string {
	loc := e.SourceID
	if e.Pos != nil {
		loc += ":" + e.Pos.String()
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Stage, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(stage Stage, sourceID string, err error) *Error {
	e := &Error{
		Stage:    stage,
		SourceID: sourceID,
		Message:  err.Error(),
		Err:      err,
	}
	var loc Locator
	if errors.As(err, &loc) {
		if line, col := loc.Location(); line > 0 {
			e.Pos = &Position{Line: line, Column: col}
		}
	}
	return e
}

// StageOf returns the stage that produced err, if err came from a pipeline.
func StageOf(err error) (Stage, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Stage, true
	}
	return "", false
}
