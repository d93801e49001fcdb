package highlight

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dlclark/regexp2"

	"github.com/zjrosen/xshell/internal/log"
	"github.com/zjrosen/xshell/internal/style"
)

// ErrSealed is returned by Register once the engine has highlighted a block.
var ErrSealed = errors.New("highlight engine is sealed")

// DefaultMatchTimeout bounds a single pattern search over one block.
const DefaultMatchTimeout = 250 * time.Millisecond

// Highlighter produces spans for a block and renders it.
type Highlighter interface {
	Highlight(block string) []Span
	Render(block string) string
}

type rule struct {
	pattern string
	re      *regexp2.Regexp
	style   string
}

// Engine is an ordered list of highlighting rules bound to a style registry.
type Engine struct {
	name     string
	registry *style.Registry
	timeout  time.Duration

	mu     sync.Mutex
	rules  []rule
	styles map[string]lipgloss.Style
	sealed atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithMatchTimeout sets the per-rule, per-block match timeout. Zero disables it.
func WithMatchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithName labels the engine in log output.
func WithName(name string) Option {
	return func(e *Engine) {
		e.name = name
	}
}

// NewEngine creates an engine resolving style names through registry.
func NewEngine(registry *style.Registry, opts ...Option) *Engine {
	e := &Engine{
		name:     "default",
		registry: registry,
		timeout:  DefaultMatchTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register appends a rule. It fails if the pattern does not compile, the
// style is not defined, or the engine has already been used.
func (e *Engine) Register(pattern, styleName string) error {
	if pattern == "" {
		return fmt.Errorf("rule for style %q: empty pattern", styleName)
	}
	if _, err := e.registry.Resolve(styleName); err != nil {
		return fmt.Errorf("rule %q: %w", pattern, err)
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return fmt.Errorf("rule %q: compile pattern: %w", pattern, err)
	}
	if e.timeout > 0 {
		re.MatchTimeout = e.timeout
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sealed.Load() {
		return fmt.Errorf("rule %q: %w", pattern, ErrSealed)
	}
	e.rules = append(e.rules, rule{pattern: pattern, re: re, style: styleName})
	log.Debug(log.CatHighlight, "rule registered", "engine", e.name, "index", len(e.rules)-1, "style", styleName)
	return nil
}

// MustRegister is Register for built-in rules known to be valid.
func (e *Engine) MustRegister(pattern, styleName string) *Engine {
	if err := e.Register(pattern, styleName); err != nil {
		panic(err)
	}
	return e
}

// Seal freezes the rule list. Highlight seals implicitly.
func (e *Engine) Seal() {
	e.snapshot()
}

// snapshot seals the engine and returns the frozen rules.
func (e *Engine) snapshot() []rule {
	if !e.sealed.Load() {
		e.mu.Lock()
		if !e.sealed.Load() {
			e.styles = make(map[string]lipgloss.Style, len(e.rules))
			for _, r := range e.rules {
				e.styles[r.style] = e.registry.MustResolve(r.style).Lipgloss().TabWidth(lipgloss.NoTabConversion)
			}
			e.sealed.Store(true)
		}
		e.mu.Unlock()
	}
	return e.rules
}

// Len returns the number of registered rules.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rules)
}

// Registry returns the style registry the engine resolves against.
func (e *Engine) Registry() *style.Registry {
	return e.registry
}

// Patterns returns the registered (pattern, style) pairs in order.
func (e *Engine) Patterns() [][2]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][2]string, len(e.rules))
	for i, r := range e.rules {
		out[i] = [2]string{r.pattern, r.style}
	}
	return out
}

// Matches returns one span per non-empty match, in application order: rules
// in registration order, each rule's matches left to right.
func (e *Engine) Matches(block string) []Span {
	rules := e.snapshot()
	if block == "" {
		return nil
	}

	var spans []Span
	for i, r := range rules {
		m, err := r.re.FindStringMatch(block)
		for m != nil && err == nil {
			if m.Length > 0 {
				spans = append(spans, Span{Start: m.Index, Length: m.Length, Style: r.style})
			}
			m, err = r.re.FindNextMatch(m)
		}
		if err != nil {
			log.Warn(log.CatHighlight, "rule abandoned for block", "engine", e.name, "index", i, "style", r.style, "error", err)
		}
	}
	return spans
}

// Highlight returns the effective spans for block: non-overlapping, sorted
// by start, with overlaps resolved in favour of the later rule.
func (e *Engine) Highlight(block string) []Span {
	return Resolve(e.Matches(block), utf8.RuneCountInString(block))
}

// Render returns block with each effective span styled.
func (e *Engine) Render(block string) string {
	return e.RenderSpans(block, e.Highlight(block))
}

// RenderSpans styles block using spans previously produced by Highlight.
func (e *Engine) RenderSpans(block string, spans []Span) string {
	e.snapshot()
	return renderRunes([]rune(block), spans, func(name string) lipgloss.Style {
		if s, ok := e.styles[name]; ok {
			return s
		}
		return lipgloss.NewStyle()
	})
}
