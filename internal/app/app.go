// Package app wires the highlighting engines, the compile pipeline, artifact
// persistence and compile history into one caller-owned context.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/xshell/internal/artifact"
	"github.com/zjrosen/xshell/internal/config"
	"github.com/zjrosen/xshell/internal/flags"
	"github.com/zjrosen/xshell/internal/highlight"
	"github.com/zjrosen/xshell/internal/history"
	"github.com/zjrosen/xshell/internal/log"
	"github.com/zjrosen/xshell/internal/pipeline"
	"github.com/zjrosen/xshell/internal/pubsub"
	"github.com/zjrosen/xshell/internal/tracing"
)

// Compiler turns source text into a Result.
type Compiler interface {
	Compile(ctx context.Context, sourceID, text string, opts pipeline.Options) pipeline.Result
}

// Services are the collaborators an App drives. Source, Assembly and
// Compiler are required; the rest may be nil.
type Services struct {
	Source   highlight.Highlighter
	Assembly highlight.Highlighter
	Compiler Compiler
	Writer   *artifact.Writer   // nil writes to the OS filesystem
	History  history.Repository // nil disables history
	Flags    *flags.Registry
	Tracer   trace.Tracer
	Clock    func() time.Time
}

// Outcome is what one Compile call produced.
type Outcome struct {
	SourceID   string
	Text       string // the compiled source
	Result     pipeline.Result
	TargetPath string          // set when the artifact was written
	Previous   []string        // last successful assembly for this source, if known
	Record     *history.Record // nil when history is off
	Duration   time.Duration
}

// Diff compares the previous assembly with this compile's output.
func (o Outcome) Diff() history.LineDiff {
	return history.DiffLines(o.Previous, o.Result.Lines())
}

// App is the application context. It holds no global state; callers create
// as many as they need.
type App struct {
	svc        Services
	translator config.TranslatorConfig
	broker     *pubsub.Broker[Outcome]
}

// New creates an App from translator settings and services.
func New(translator config.TranslatorConfig, svc Services) (*App, error) {
	if svc.Source == nil || svc.Assembly == nil {
		return nil, errors.New("app: source and assembly highlighters are required")
	}
	if svc.Compiler == nil {
		return nil, errors.New("app: compiler is required")
	}
	if svc.Writer == nil {
		svc.Writer = artifact.NewWriter(nil)
	}
	if svc.Tracer == nil {
		svc.Tracer = noop.NewTracerProvider().Tracer("app")
	}
	if svc.Clock == nil {
		svc.Clock = time.Now
	}
	return &App{
		svc:        svc,
		translator: translator,
		broker:     pubsub.NewBroker[Outcome](),
	}, nil
}

// Events returns the broker every Compile outcome is published on.
func (a *App) Events() *pubsub.Broker[Outcome] {
	return a.broker
}

// Flags returns the feature flags, possibly nil.
func (a *App) Flags() *flags.Registry {
	return a.svc.Flags
}

// Close stops event delivery.
func (a *App) Close() {
	a.broker.Close()
}

// Compile runs the pipeline on text read from path. Only a successful result
// is written to disk. The returned error reports persistence failures; the
// compile's own failure is in Outcome.Result.
func (a *App) Compile(ctx context.Context, path, text string) (Outcome, error) {
	start := a.svc.Clock()
	res := a.svc.Compiler.Compile(ctx, path, text, a.translator.Options())
	out := Outcome{
		SourceID: path,
		Text:     text,
		Result:   res,
		Duration: a.svc.Clock().Sub(start),
	}

	var errs []error
	if res.OK() {
		out.Previous = a.previous(ctx, path)
		target, err := a.persist(ctx, path, res.Lines())
		if err != nil {
			errs = append(errs, err)
		} else {
			out.TargetPath = target
		}
	} else {
		log.Debug(log.CatPipeline, "Compile failed", "source", path, "error", res.Err())
	}

	if a.svc.History != nil {
		rec, err := a.record(ctx, out, start)
		if err != nil {
			errs = append(errs, err)
		}
		out.Record = rec
	}

	if res.OK() {
		a.broker.Publish(pubsub.CompileSucceeded, out)
	} else {
		a.broker.Publish(pubsub.CompileFailed, out)
	}
	return out, errors.Join(errs...)
}

// previous finds the last good assembly for path, from history when enabled
// and otherwise from the artifact already on disk.
func (a *App) previous(ctx context.Context, path string) []string {
	if a.svc.History != nil {
		rec, err := a.svc.History.LatestSuccess(ctx, path)
		if err == nil {
			return rec.Assembly
		}
		if !errors.Is(err, history.ErrNotFound) {
			log.Warn(log.CatStore, "Latest compile lookup failed", "source", path, "error", err)
		}
		return nil
	}

	target := a.TargetPath(path)
	if !a.svc.Writer.Exists(target) {
		return nil
	}
	lines, err := a.svc.Writer.Read(target)
	if err != nil {
		log.Warn(log.CatPipeline, "Reading previous artifact failed", "path", target, "error", err)
		return nil
	}
	return lines
}

// TargetPath is where the artifact for path is written.
func (a *App) TargetPath(path string) string {
	return artifact.TargetPath(path, a.translator.OutputDir, a.translator.TargetExt)
}

func (a *App) persist(ctx context.Context, path string, lines []string) (string, error) {
	target := a.TargetPath(path)
	_, span := a.svc.Tracer.Start(ctx, tracing.SpanPersist, trace.WithAttributes(
		attribute.String(tracing.AttrArtifactPath, target),
		attribute.Int(tracing.AttrLineCount, len(lines)),
	))
	defer span.End()

	if err := a.svc.Writer.Write(target, lines); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatPipeline, "Writing artifact failed", err, "path", target)
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	log.Info(log.CatPipeline, "Wrote artifact", "path", target, "lines", len(lines))
	return target, nil
}

func (a *App) record(ctx context.Context, out Outcome, at time.Time) (*history.Record, error) {
	ctx, span := a.svc.Tracer.Start(ctx, tracing.SpanHistory, trace.WithAttributes(
		attribute.String(tracing.AttrSourceID, out.SourceID),
	))
	defer span.End()

	rec := history.NewRecord(out.SourceID, out.Result, out.Duration, at)
	if err := a.svc.History.Save(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatStore, "Saving compile record failed", err, "source", out.SourceID)
		return nil, fmt.Errorf("saving history: %w", err)
	}
	return rec, nil
}

// LatestSuccess returns the most recent successful compile of path from
// history. It returns history.ErrNotFound when history is off.
func (a *App) LatestSuccess(ctx context.Context, path string) (*history.Record, error) {
	if a.svc.History == nil {
		return nil, history.ErrNotFound
	}
	return a.svc.History.LatestSuccess(ctx, path)
}

// HighlightSource renders source text with the source engine, one line at a time.
func (a *App) HighlightSource(text string) string {
	return highlight.RenderText(a.svc.Source, text)
}

// HighlightAssembly renders assembly lines with the assembly engine.
func (a *App) HighlightAssembly(lines []string) string {
	return highlight.RenderText(a.svc.Assembly, strings.Join(lines, "\n"))
}

// SourceSpans returns the effective spans of one source line.
func (a *App) SourceSpans(line string) []highlight.Span {
	return a.svc.Source.Highlight(line)
}

// AssemblySpans returns the effective spans of one assembly line.
func (a *App) AssemblySpans(line string) []highlight.Span {
	return a.svc.Assembly.Highlight(line)
}
