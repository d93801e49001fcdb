// Package pipeline sequences the lex, parse and generate stages of a
// translation with fail-fast short-circuiting.
//
// The stages are supplied by the caller. The orchestrator only decides
// which stage runs next and how a stage failure is reported.
package pipeline

import "context"

// Stage names a translation step.
type Stage string

const (
	StageLex      Stage = "lex"
	StageParse    Stage = "parse"
	StageGenerate Stage = "generate"
)

// Options are forwarded unchanged to the generate stage.
type Options struct {
	// SuppressTrailingInstruction asks the generator to omit the instruction
	// it would normally append at the end of the program.
	SuppressTrailingInstruction bool `mapstructure:"suppress_trailing_instruction"`
}

// Lexer turns source text into a token stream of type T.
type Lexer[T any] interface {
	Lex(ctx context.Context, sourceID, text string) (T, error)
}

// Parser turns a token stream into an AST of type A.
type Parser[T, A any] interface {
	Parse(ctx context.Context, tokens T) (A, error)
}

// Generator turns an AST into assembly lines.
type Generator[A any] interface {
	Generate(ctx context.Context, ast A, opts Options) ([]string, error)
}

// LexFunc adapts a function to Lexer.
type LexFunc[T any] func(ctx context.Context, sourceID, text string) (T, error)

func (f LexFunc[T]) Lex(ctx context.Context, sourceID, text string) (T, error) {
	return f(ctx, sourceID, text)
}

// ParseFunc adapts a function to Parser.
type ParseFunc[T, A any] func(ctx context.Context, tokens T) (A, error)

func (f ParseFunc[T, A]) Parse(ctx context.Context, tokens T) (A, error) {
	return f(ctx, tokens)
}

// GenerateFunc adapts a function to Generator.
type GenerateFunc[A any] func(ctx context.Context, ast A, opts Options) ([]string, error)

func (f GenerateFunc[A]) Generate(ctx context.Context, ast A, opts Options) ([]string, error) {
	return f(ctx, ast, opts)
}

// EmbeddedError is implemented by ASTs that can carry a parse error of their
// own. A non-nil Err fails the parse stage even when Parse returned nil.
type EmbeddedError interface {
	Err() error
}

// Locator is implemented by stage errors that know where in the source they
// occurred. Line and column are 1-based; a line below 1 means unknown.
type Locator interface {
	Location() (line, column int)
}
