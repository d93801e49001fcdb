package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderRunes(runes []rune, spans []Span, styleFor func(string) lipgloss.Style) string {
	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		start := min(max(sp.Start, pos), len(runes))
		end := min(sp.End(), len(runes))
		if start > pos {
			b.WriteString(string(runes[pos:start]))
		}
		if end > start {
			b.WriteString(styleFor(sp.Style).Render(string(runes[start:end])))
			pos = end
		}
	}
	if pos < len(runes) {
		b.WriteString(string(runes[pos:]))
	}
	return b.String()
}

// RenderText highlights text line by line, each line as an independent block.
func RenderText(h Highlighter, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = h.Render(line)
	}
	return strings.Join(lines, "\n")
}
