package pipeline

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/xshell/internal/log"
	"github.com/zjrosen/xshell/internal/tracing"
)

// Pipeline runs lex, parse and generate in order. It holds no per-compile
// state; concurrent Compile calls are as safe as the stages they call.
type Pipeline[T, A any] struct {
	lexer     Lexer[T]
	parser    Parser[T, A]
	generator Generator[A]
	tracer    trace.Tracer
}

type settings struct {
	tracer trace.Tracer
}

// Option configures a Pipeline.
type Option func(*settings)

// WithTracer records one span per stage under a compile span.
func WithTracer(t trace.Tracer) Option {
	return func(s *settings) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New creates a pipeline from its three stages.
func New[T, A any](lexer Lexer[T], parser Parser[T, A], generator Generator[A], opts ...Option) *Pipeline[T, A] {
	s := settings{tracer: noop.NewTracerProvider().Tracer("pipeline")}
	for _, opt := range opts {
		opt(&s)
	}
	return &Pipeline[T, A]{
		lexer:     lexer,
		parser:    parser,
		generator: generator,
		tracer:    s.tracer,
	}
}

// Compile translates text. The first stage to fail stops the run and its
// error is returned as a *Error; later stages never start. opts reach only
// the generate stage.
func (p *Pipeline[T, A]) Compile(ctx context.Context, sourceID, text string, opts Options) Result {
	ctx, span := p.tracer.Start(ctx, tracing.SpanCompile, trace.WithAttributes(
		attribute.String(tracing.AttrSourceID, sourceID),
		attribute.Int(tracing.AttrSourceBytes, len(text)),
		attribute.Bool(tracing.AttrSuppressTail, opts.SuppressTrailingInstruction),
	))
	defer span.End()

	tokens, err := run(ctx, p.tracer, StageLex, func(ctx context.Context) (T, error) {
		return p.lexer.Lex(ctx, sourceID, text)
	})
	if err != nil {
		return p.fail(span, StageLex, sourceID, err)
	}

	ast, err := run(ctx, p.tracer, StageParse, func(ctx context.Context) (A, error) {
		ast, err := p.parser.Parse(ctx, tokens)
		if err == nil {
			err = embedded(ast)
		}
		return ast, err
	})
	if err != nil {
		return p.fail(span, StageParse, sourceID, err)
	}

	lines, err := run(ctx, p.tracer, StageGenerate, func(ctx context.Context) ([]string, error) {
		return p.generator.Generate(ctx, ast, opts)
	})
	if err != nil {
		return p.fail(span, StageGenerate, sourceID, err)
	}

	span.SetAttributes(attribute.Int(tracing.AttrLineCount, len(lines)))
	span.SetStatus(codes.Ok, "")
	log.Debug(log.CatPipeline, "compile succeeded", "source", sourceID, "lines", len(lines))
	return Succeeded(lines)
}

func (p *Pipeline[T, A]) fail(span trace.Span, stage Stage, sourceID string, err error) Result {
	perr := newError(stage, sourceID, err)
	span.SetAttributes(attribute.String(tracing.AttrFailedStage, string(stage)))
	if perr.Pos != nil {
		span.SetAttributes(
			attribute.Int(tracing.AttrErrorLine, perr.Pos.Line),
			attribute.Int(tracing.AttrErrorColumn, perr.Pos.Column),
		)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, perr.Message)
	log.Debug(log.CatPipeline, "compile failed", "source", sourceID, "stage", stage, "error", perr.Message)
	return Failed(perr)
}

func run[R any](ctx context.Context, tracer trace.Tracer, stage Stage, fn func(context.Context) (R, error)) (R, error) {
	ctx, span := tracer.Start(ctx, tracing.SpanPrefix+string(stage),
		trace.WithAttributes(attribute.String(tracing.AttrStage, string(stage))))
	defer span.End()

	out, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var zero R
		return zero, err
	}
	span.SetStatus(codes.Ok, "")
	return out, nil
}

func embedded(ast any) error {
	if e, ok := ast.(EmbeddedError); ok && e != nil {
		return e.Err()
	}
	return nil
}
