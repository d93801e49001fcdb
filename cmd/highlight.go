package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/xshell/internal/app"
	"github.com/zjrosen/xshell/internal/highlight"
)

var (
	highlightAssembly bool
	highlightSpans    bool
)

var highlightCmd = &cobra.Command{
	Use:   "highlight [FILE]",
	Short: "Print a file with syntax highlighting",
	Long: `Print an X# file (or, with --assembly, an assembly file) highlighted
with the configured rule set. Each line is highlighted on its own. Reads
standard input when FILE is omitted or "-".

Examples:
  xshell highlight prog.xs
  xshell highlight --assembly assembly/prog.xasm
  xshell highlight --spans prog.xs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHighlight,
}

func init() {
	highlightCmd.Flags().BoolVarP(&highlightAssembly, "assembly", "a", false, "use the assembly rule set")
	highlightCmd.Flags().BoolVar(&highlightSpans, "spans", false, "print the effective spans instead of colored text")
	rootCmd.AddCommand(highlightCmd)
}

func runHighlight(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	engines, err := app.BuildEngines(cfg.Highlight)
	if err != nil {
		return err
	}
	h := engines.Source
	if highlightAssembly {
		h = engines.Assembly
	}

	out := cmd.OutOrStdout()
	if highlightSpans {
		printSpans(out, h, text)
		return nil
	}
	_, err = fmt.Fprintln(out, highlight.RenderText(h, strings.TrimSuffix(text, "\n")))
	return err
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0]) //nolint:gosec // G304: path is a command argument
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

// printSpans writes line:start+length style for every effective span.
func printSpans(w io.Writer, h highlight.Highlighter, text string) {
	for i, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		for _, s := range h.Highlight(line) {
			_, _ = fmt.Fprintf(w, "%d:%d+%d %s\n", i+1, s.Start, s.Length, s.Style)
		}
	}
}
