package history

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineDiff is a line-level diff between two assembly listings.
type LineDiff struct {
	diffs []diffmatchpatch.Diff
}

// DiffLines compares two listings line by line.
func DiffLines(before, after []string) LineDiff {
	dmp := diffmatchpatch.New()
	a, b, table := dmp.DiffLinesToChars(joinLines(before), joinLines(after))
	diffs := dmp.DiffMain(a, b, false)
	return LineDiff{diffs: dmp.DiffCharsToLines(diffs, table)}
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Stats returns the number of added and removed lines.
func (d LineDiff) Stats() (added, removed int) {
	for _, df := range d.diffs {
		n := strings.Count(df.Text, "\n")
		switch df.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		}
	}
	return added, removed
}

// Changed reports whether the listings differ.
func (d LineDiff) Changed() bool {
	added, removed := d.Stats()
	return added+removed > 0
}

// Unified renders the diff with "+", "-" and " " line prefixes.
func (d LineDiff) Unified() string {
	var b strings.Builder
	for _, df := range d.diffs {
		prefix := "  "
		switch df.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(df.Text, "\n") {
			if line == "" {
				continue
			}
			b.WriteString(prefix)
			b.WriteString(line)
		}
	}
	return b.String()
}
