package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/xshell/internal/app"
)

var (
	compileScript   string
	compileSuppress bool
	compilePrint    bool
	compileOutDir   string
)

var compileCmd = &cobra.Command{
	Use:   "compile FILE...",
	Short: "Compile X# files to assembly",
	Long: `Compile one or more X# files. Each successful compile is written to
<output_dir>/<name><target_ext>; a failed compile writes nothing and reports
the failing stage with its position.

Examples:
  xshell compile prog.xs
  xshell compile --print prog.xs
  xshell compile --script ./translator.lua --suppress-trailing a.xs b.xs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileScript, "script", "s", "", "Lua translator script (overrides translator.script)")
	compileCmd.Flags().BoolVar(&compileSuppress, "suppress-trailing", false, "omit the generator's trailing instruction")
	compileCmd.Flags().BoolVarP(&compilePrint, "print", "p", false, "print the highlighted assembly")
	compileCmd.Flags().StringVarP(&compileOutDir, "out", "o", "", "output directory (overrides translator.output_dir)")
	rootCmd.AddCommand(compileCmd)
}

// compileConfig applies the translator flags on top of the loaded config.
func compileConfig(cmd *cobra.Command) {
	if compileScript != "" {
		cfg.Translator.Script = compileScript
	}
	if cmd.Flags().Changed("suppress-trailing") {
		cfg.Translator.SuppressTrailingInstruction = compileSuppress
	}
	if compileOutDir != "" {
		cfg.Translator.OutputDir = compileOutDir
	}
}

func runCompile(cmd *cobra.Command, args []string) error {
	compileConfig(cmd)
	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		text, err := os.ReadFile(path) //nolint:gosec // G304: path is a command argument
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		outcome, err := rt.app.Compile(cmd.Context(), path, string(text))
		if err != nil {
			return err
		}
		printOutcome(out, outcome)
		if !outcome.Result.OK() {
			failed++
			continue
		}
		if compilePrint {
			_, _ = fmt.Fprintln(out, rt.app.HighlightAssembly(outcome.Result.Lines()))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d compiles failed", failed, len(args))
	}
	return nil
}

// printOutcome writes a one-line summary of a compile.
func printOutcome(w io.Writer, o app.Outcome) {
	if !o.Result.OK() {
		_, _ = fmt.Fprintf(w, "FAIL %s\n", o.Result.Err())
		return
	}
	lines := o.Result.Lines()
	var b strings.Builder
	fmt.Fprintf(&b, "ok   %s -> %s (%d lines, %s)", o.SourceID, o.TargetPath, len(lines), o.Duration.Round(time.Microsecond))
	if o.Record != nil {
		fmt.Fprintf(&b, " [%s]", o.Record.ShortGUID())
	}
	_, _ = fmt.Fprintln(w, b.String())
}
