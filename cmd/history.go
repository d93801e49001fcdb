package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/xshell/internal/history"
)

var historyLimit int

var (
	diffAddedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#55AA7F"))
	diffRemovedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent compiles",
	Long: `List recent compiles, newest first. Records are referenced by their
numeric id or a prefix of their GUID.

Examples:
  xshell history
  xshell history show 12
  xshell history diff 11 12`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withHistory(cmd, func(ctx context.Context, repo history.Repository) error {
			records, err := repo.List(ctx, historyLimit)
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show REF",
	Short: "Show one compile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(ctx context.Context, repo history.Repository) error {
			rec, err := findRecord(ctx, repo, args[0])
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		})
	},
}

var historyDiffCmd = &cobra.Command{
	Use:   "diff A B",
	Short: "Diff the assembly of two successful compiles",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(ctx context.Context, repo history.Repository) error {
			var recs [2]*history.Record
			for i, ref := range args {
				rec, err := findRecord(ctx, repo, ref)
				if err != nil {
					return err
				}
				if !rec.Succeeded {
					return fmt.Errorf("compile %s failed and has no assembly", ref)
				}
				recs[i] = rec
			}
			printDiff(cmd.OutOrStdout(), history.DiffLines(recs[0].Assembly, recs[1].Assembly))
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to list")
	historyCmd.AddCommand(historyShowCmd, historyDiffCmd)
	rootCmd.AddCommand(historyCmd)
}

func withHistory(cmd *cobra.Command, fn func(context.Context, history.Repository) error) error {
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, db.CompileRepository())
}

// findRecord resolves a numeric id or a GUID prefix.
func findRecord(ctx context.Context, repo history.Repository, ref string) (*history.Record, error) {
	var (
		rec *history.Record
		err error
	)
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		rec, err = repo.FindByID(ctx, id)
	} else {
		rec, err = repo.FindByGUID(ctx, ref)
	}
	if errors.Is(err, history.ErrNotFound) {
		return nil, fmt.Errorf("no compile matches %q", ref)
	}
	return rec, err
}

func printRecords(w io.Writer, records []*history.Record) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "no compiles recorded")
		return
	}
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%-5d %-8s  %s  %-16s %s\n",
			r.ID, r.ShortGUID(), r.CreatedAt.Local().Format(time.DateTime), r.Status(), r.SourceID)
	}
}

func printRecord(w io.Writer, r *history.Record) {
	_, _ = fmt.Fprintf(w, "id:       %d\n", r.ID)
	_, _ = fmt.Fprintf(w, "guid:     %s\n", r.GUID)
	_, _ = fmt.Fprintf(w, "source:   %s\n", r.SourceID)
	_, _ = fmt.Fprintf(w, "when:     %s\n", r.CreatedAt.Local().Format(time.DateTime))
	_, _ = fmt.Fprintf(w, "took:     %s\n", r.Duration)
	_, _ = fmt.Fprintf(w, "status:   %s\n", r.Status())
	if !r.Succeeded {
		pos := ""
		if r.ErrorLine > 0 {
			pos = fmt.Sprintf(" (line %d, column %d)", r.ErrorLine, r.ErrorColumn)
		}
		_, _ = fmt.Fprintf(w, "error:    %s%s\n", r.ErrorMessage, pos)
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, strings.Join(r.Assembly, "\n"))
}

func printDiff(w io.Writer, d history.LineDiff) {
	if !d.Changed() {
		_, _ = fmt.Fprintln(w, "no changes")
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(d.Unified(), "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+ "):
			line = diffAddedStyle.Render(line)
		case strings.HasPrefix(line, "- "):
			line = diffRemovedStyle.Render(line)
		}
		_, _ = fmt.Fprintln(w, line)
	}
	added, removed := d.Stats()
	_, _ = fmt.Fprintf(w, "%d added, %d removed\n", added, removed)
}
