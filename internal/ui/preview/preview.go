// Package preview provides the split-pane watch view: highlighted source on
// the left, highlighted assembly (or the compile error) on the right.
package preview

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/xshell/internal/app"
	"github.com/zjrosen/xshell/internal/keys"
	"github.com/zjrosen/xshell/internal/log"
	"github.com/zjrosen/xshell/internal/pipeline"
	"github.com/zjrosen/xshell/internal/pubsub"
	"github.com/zjrosen/xshell/internal/ui/panes"
)

var (
	borderColor       = lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#555555"}
	focusedColor      = lipgloss.AdaptiveColor{Light: "#0A7EA4", Dark: "#69CDFF"}
	errorColor        = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"}
	okColor           = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#55AA7F"}
	mutedColor        = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#969696"}
	statusStyle       = lipgloss.NewStyle().Foreground(mutedColor)
	errorMessageStyle = lipgloss.NewStyle().Foreground(errorColor)
)

// Renderer highlights source text and assembly lines.
type Renderer interface {
	HighlightSource(text string) string
	HighlightAssembly(lines []string) string
}

// Pane identifies one side of the preview.
type Pane int

const (
	PaneSource Pane = iota
	PaneAssembly
)

// OutcomeMsg replaces the displayed compile outcome.
type OutcomeMsg struct {
	Outcome app.Outcome
}

// Model is the preview state.
type Model struct {
	renderer Renderer
	path     string
	showDiff bool

	source   viewport.Model
	assembly viewport.Model
	focus    Pane
	width    int
	height   int

	outcome *app.Outcome
	status  string
	lastLog string
	help    help.Model

	events *pubsub.ContinuousListener[app.Outcome]
	logs   *log.Listener
}

// New creates a preview for the source at path.
func New(renderer Renderer, path string) Model {
	return Model{
		renderer: renderer,
		path:     path,
		source:   viewport.New(0, 0),
		assembly: viewport.New(0, 0),
		status:   "waiting for first compile",
		help:     help.New(),
	}
}

// WithEvents makes the preview follow compile outcomes from l.
func (m Model) WithEvents(l *pubsub.ContinuousListener[app.Outcome]) Model {
	m.events = l
	return m
}

// WithLogs shows the latest log entry in the status line.
func (m Model) WithLogs(l *log.Listener) Model {
	m.logs = l
	return m
}

// WithDiff adds added/removed line counts against the previous compile.
func (m Model) WithDiff(on bool) Model {
	m.showDiff = on
	return m
}

// WithOutcome sets the outcome shown before the first event arrives.
func (m Model) WithOutcome(o app.Outcome) Model {
	m.apply(o)
	return m
}

// Focus returns the focused pane.
func (m Model) Focus() Pane {
	return m.focus
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.events != nil {
		cmds = append(cmds, m.events.Listen())
	}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Preview.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Preview.SwitchPane):
			if m.focus == PaneSource {
				m.focus = PaneAssembly
			} else {
				m.focus = PaneSource
			}
			return m, nil
		case key.Matches(msg, keys.Preview.Top):
			m.focused().GotoTop()
			return m, nil
		case key.Matches(msg, keys.Preview.Bottom):
			m.focused().GotoBottom()
			return m, nil
		}
		// Scrolling keys go to the focused viewport's own key map.
		var cmd tea.Cmd
		if m.focus == PaneSource {
			m.source, cmd = m.source.Update(msg)
		} else {
			m.assembly, cmd = m.assembly.Update(msg)
		}
		return m, cmd

	case OutcomeMsg:
		m.apply(msg.Outcome)
		return m, nil

	case pubsub.Event[app.Outcome]:
		m.apply(msg.Payload)
		if m.events != nil {
			return m, m.events.Listen()
		}
		return m, nil

	case pubsub.Event[string]:
		m.lastLog = strings.TrimSpace(msg.Payload)
		if m.logs != nil {
			return m, m.logs.Listen()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) focused() *viewport.Model {
	if m.focus == PaneSource {
		return &m.source
	}
	return &m.assembly
}

func (m *Model) apply(o app.Outcome) {
	m.outcome = &o
	m.source.SetContent(m.renderer.HighlightSource(o.Text))

	if o.Result.OK() {
		lines := o.Result.Lines()
		m.assembly.SetContent(m.renderer.HighlightAssembly(lines))
		m.status = fmt.Sprintf("ok: %d lines", len(lines))
		if o.TargetPath != "" {
			m.status += " -> " + o.TargetPath
		}
		if m.showDiff && o.Previous != nil {
			added, removed := o.Diff().Stats()
			m.status += fmt.Sprintf(" (+%d -%d)", added, removed)
		}
	} else {
		m.assembly.SetContent(errorMessageStyle.Render(o.Result.Err().Error()))
		m.status = "failed"
	}
	log.Debug(log.CatUI, "Preview updated", "source", o.SourceID, "ok", o.Result.OK())
}

func (m *Model) resize() {
	leftWidth := max(m.width/2, 4)
	rightWidth := max(m.width-leftWidth, 4)
	// border (2) + status line (1)
	innerHeight := max(m.height-3, 1)
	m.source.Width, m.source.Height = leftWidth-2, innerHeight
	m.assembly.Width, m.assembly.Height = rightWidth-2, innerHeight
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	left := panes.Bordered(panes.Config{
		Content:      m.source.View(),
		Width:        m.source.Width + 2,
		Height:       m.source.Height + 2,
		LeftTitle:    filepath.Base(m.path),
		Focused:      m.focus == PaneSource,
		BorderColor:  borderColor,
		FocusedColor: focusedColor,
	})
	right := panes.Bordered(panes.Config{
		Content:      m.assembly.View(),
		Width:        m.assembly.Width + 2,
		Height:       m.assembly.Height + 2,
		LeftTitle:    "assembly",
		RightTitle:   m.outputTitle(),
		Focused:      m.focus == PaneAssembly,
		BorderColor:  m.outputBorder(),
		FocusedColor: focusedColor,
	})
	panesRow := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := m.status
	if m.lastLog != "" {
		status += "  " + m.lastLog
	}
	status = ansi.Truncate(status+"  "+m.help.ShortHelpView(keys.Preview.ShortHelp()), m.width, "…")

	return lipgloss.JoinVertical(lipgloss.Left, panesRow, statusStyle.Render(status))
}

func (m Model) outputTitle() string {
	switch {
	case m.outcome == nil:
		return ""
	case m.outcome.Result.OK():
		return "ok"
	default:
		if stage, ok := pipeline.StageOf(m.outcome.Result.Err()); ok {
			return string(stage) + " failed"
		}
		return "failed"
	}
}

func (m Model) outputBorder() lipgloss.TerminalColor {
	switch {
	case m.outcome == nil:
		return borderColor
	case m.outcome.Result.OK():
		return okColor
	default:
		return errorColor
	}
}
