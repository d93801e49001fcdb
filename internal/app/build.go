package app

import (
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/xshell/internal/config"
	"github.com/zjrosen/xshell/internal/highlight"
	"github.com/zjrosen/xshell/internal/pipeline"
	"github.com/zjrosen/xshell/internal/ruleset"
	"github.com/zjrosen/xshell/internal/script"
	"github.com/zjrosen/xshell/internal/xsharp"
)

// Engines holds the source and assembly highlighters.
type Engines struct {
	Source   highlight.Highlighter
	Assembly highlight.Highlighter
}

// BuildEngines loads the configured rule sets, falling back to the built-in
// ones, and wraps each engine in a span cache when caching is on.
func BuildEngines(cfg config.HighlightConfig) (Engines, error) {
	source, err := buildEngine(cfg, cfg.SourceRules, ruleset.XSharp())
	if err != nil {
		return Engines{}, fmt.Errorf("source rules: %w", err)
	}
	assembly, err := buildEngine(cfg, cfg.AssemblyRules, ruleset.Assembly())
	if err != nil {
		return Engines{}, fmt.Errorf("assembly rules: %w", err)
	}
	return Engines{Source: source, Assembly: assembly}, nil
}

func buildEngine(cfg config.HighlightConfig, path string, fallback ruleset.Spec) (highlight.Highlighter, error) {
	spec, err := ruleset.LoadOr(path, fallback)
	if err != nil {
		return nil, err
	}
	var opts []highlight.Option
	if cfg.MatchTimeout > 0 {
		opts = append(opts, highlight.WithMatchTimeout(cfg.MatchTimeout))
	}
	engine, err := ruleset.Build(spec, opts...)
	if err != nil {
		return nil, err
	}
	if cfg.Cache {
		return highlight.NewCached(engine, cfg.CacheTTL), nil
	}
	return engine, nil
}

// NewPipeline joins the X# lexer with a scripted parser and generator.
func NewPipeline(tr *script.Translator, tracer trace.Tracer) *pipeline.Pipeline[[]xsharp.Token, *script.AST] {
	return pipeline.New[[]xsharp.Token, *script.AST](
		pipeline.LexFunc[[]xsharp.Token](xsharp.Lex),
		tr,
		tr,
		pipeline.WithTracer(tracer),
	)
}
