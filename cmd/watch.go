package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/xshell/internal/app"
	"github.com/zjrosen/xshell/internal/flags"
	"github.com/zjrosen/xshell/internal/log"
	"github.com/zjrosen/xshell/internal/pipeline"
	"github.com/zjrosen/xshell/internal/pubsub"
	"github.com/zjrosen/xshell/internal/ui/preview"
	"github.com/zjrosen/xshell/internal/watcher"
)

var (
	watchTUI    bool
	watchScript string
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Recompile a file whenever it changes",
	Long: `Compile FILE, then recompile it every time it is saved. With --tui the
highlighted source and assembly are shown side by side; otherwise each
outcome is printed as it happens.

Set flags.assembly-diff to see what changed in the assembly between
successful compiles.

Examples:
  xshell watch prog.xs
  xshell watch --tui prog.xs`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchTUI, "tui", "t", false, "show a live split preview")
	watchCmd.Flags().StringVarP(&watchScript, "script", "s", "", "Lua translator script (overrides translator.script)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchScript != "" {
		cfg.Translator.Script = watchScript
	}
	path := args[0]

	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	w, err := watcher.New(watcher.Config{Path: path, Debounce: cfg.Watch.Debounce})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()
	changes, err := w.Start()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchTUI {
		return watchPreview(ctx, rt.app, path, changes)
	}
	return watchPlain(ctx, cmd.OutOrStdout(), rt.app, path, changes)
}

func compileFile(ctx context.Context, a *app.App, path string) (app.Outcome, error) {
	text, err := os.ReadFile(path) //nolint:gosec // G304: path is a command argument
	if err != nil {
		return app.Outcome{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return a.Compile(ctx, path, string(text))
}

func watchPlain(ctx context.Context, out io.Writer, a *app.App, path string, changes <-chan struct{}) error {
	showDiff := a.Flags().Enabled(flags.FlagAssemblyDiff)
	report := func() {
		outcome, err := compileFile(ctx, a, path)
		if err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		printOutcome(out, outcome)
		if showDiff && outcome.Result.OK() && outcome.Previous != nil {
			printDiff(out, outcome.Diff())
		}
	}

	report()
	_, _ = fmt.Fprintf(out, "watching %s (ctrl+c to stop)\n", path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			log.Debug(log.CatWatcher, "Source changed", "path", path)
			report()
		}
	}
}

func watchPreview(ctx context.Context, a *app.App, path string, changes <-chan struct{}) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := preview.New(a, path).
		WithEvents(pubsub.NewContinuousListener(ctx, a.Events())).
		WithDiff(a.Flags().Enabled(flags.FlagAssemblyDiff))
	if l := log.NewListener(ctx); l != nil {
		model = model.WithLogs(l)
	}
	if a.Flags().Enabled(flags.FlagHistoryPreview) {
		if rec, err := a.LatestSuccess(ctx, path); err == nil {
			text, _ := os.ReadFile(path) //nolint:gosec // G304: path is a command argument
			model = model.WithOutcome(app.Outcome{
				SourceID: path,
				Text:     string(text),
				Result:   pipeline.Succeeded(rec.Assembly),
			})
		}
	}

	go func() {
		recompile := func() {
			if _, err := compileFile(ctx, a, path); err != nil {
				log.ErrorErr(log.CatWatcher, "Recompile failed", err, "path", path)
			}
		}
		recompile()
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				recompile()
			}
		}
	}()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running preview: %w", err)
	}
	return nil
}
