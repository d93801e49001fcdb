// Package panes renders bordered panels with titles set into the top border.
package panes

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// DefaultBorderColor is used when a Config leaves BorderColor nil.
var DefaultBorderColor lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#555555"}

// Config configures one bordered panel.
type Config struct {
	Content string // rendered inside the border, clipped to fit
	Width   int    // total width including borders
	Height  int    // total height including borders

	LeftTitle  string // on the top border, left-aligned
	RightTitle string // on the top border, right-aligned

	Focused      bool
	TitleColor   lipgloss.TerminalColor // nil uses the border color
	BorderColor  lipgloss.TerminalColor // nil uses DefaultBorderColor
	FocusedColor lipgloss.TerminalColor // nil keeps BorderColor when focused
}

// Bordered renders cfg.Content inside a rounded border of exactly
// cfg.Width x cfg.Height cells.
func Bordered(cfg Config) string {
	color := cfg.BorderColor
	if color == nil {
		color = DefaultBorderColor
	}
	if cfg.Focused && cfg.FocusedColor != nil {
		color = cfg.FocusedColor
	}
	titleColor := cfg.TitleColor
	if titleColor == nil {
		titleColor = color
	}
	borderStyle := lipgloss.NewStyle().Foreground(color)
	titleStyle := lipgloss.NewStyle().Foreground(titleColor).Bold(cfg.Focused)

	innerWidth := max(cfg.Width-2, 1)
	contentHeight := max(cfg.Height-2, 1)

	lines := strings.Split(cfg.Content, "\n")
	body := make([]string, contentHeight)
	for i := range contentHeight {
		var line string
		if i < len(lines) {
			line = ansi.Truncate(lines[i], innerWidth, "")
		}
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		body[i] = borderStyle.Render(borderVertical) + line + borderStyle.Render(borderVertical)
	}

	var b strings.Builder
	b.WriteString(topBorder(cfg.LeftTitle, cfg.RightTitle, innerWidth, borderStyle, titleStyle))
	b.WriteString("\n")
	b.WriteString(strings.Join(body, "\n"))
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight))
	return b.String()
}

// topBorder builds ╭─ Left ───────── Right ─╮, dropping the right title and
// then truncating the left one when the panel is too narrow.
func topBorder(left, right string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	plain := borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	if left == "" && right == "" {
		return plain
	}

	leftWidth, rightWidth := lipgloss.Width(left), lipgloss.Width(right)
	if right != "" && leftWidth+rightWidth+6 > innerWidth {
		right, rightWidth = "", 0
	}
	if left == "" && right == "" {
		return plain
	}

	var b strings.Builder
	b.WriteString(borderStyle.Render(borderTopLeft))
	used := 0
	if left != "" {
		avail := innerWidth - 4 // "─ " + " ─"
		if avail < 1 {
			return plain
		}
		left = ansi.Truncate(left, avail, "…")
		leftWidth = lipgloss.Width(left)
		b.WriteString(borderStyle.Render(borderHorizontal + " "))
		b.WriteString(titleStyle.Render(left))
		b.WriteString(borderStyle.Render(" "))
		used = leftWidth + 3
	}

	tail := 0
	if right != "" {
		tail = rightWidth + 3 // " " + title + " ─"
	}
	b.WriteString(borderStyle.Render(strings.Repeat(borderHorizontal, max(innerWidth-used-tail, 1))))
	if right != "" {
		b.WriteString(borderStyle.Render(" "))
		b.WriteString(titleStyle.Render(right))
		b.WriteString(borderStyle.Render(" " + borderHorizontal))
	}
	b.WriteString(borderStyle.Render(borderTopRight))
	return b.String()
}
