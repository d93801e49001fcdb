// Package style holds the named display styles used by the highlighting engine.
//
// A Registry is populated once at startup and sealed; after that it is only
// read, so it can be shared freely between goroutines.
package style

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	// ErrUnknownStyle is returned when resolving a name that was never defined.
	ErrUnknownStyle = errors.New("unknown style")

	// ErrDuplicateStyle is returned when a name is defined twice.
	ErrDuplicateStyle = errors.New("duplicate style")

	// ErrSealed is returned by Define once the registry has been sealed.
	ErrSealed = errors.New("style registry is sealed")
)

// Definition is an immutable display style.
type Definition struct {
	// Foreground is a normalised "#rrggbb" hex color or an ANSI index "0".."255".
	Foreground string
	Bold       bool
	Italic     bool
}

// Lipgloss converts the definition into a lipgloss style.
func (d Definition) Lipgloss() lipgloss.Style {
	s := lipgloss.NewStyle()
	if d.Foreground != "" {
		s = s.Foreground(lipgloss.Color(d.Foreground))
	}
	if d.Bold {
		s = s.Bold(true)
	}
	if d.Italic {
		s = s.Italic(true)
	}
	return s
}

// Registry maps style names to definitions.
type Registry struct {
	mu     sync.RWMutex
	styles map[string]Definition
	order  []string
	sealed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{styles: make(map[string]Definition)}
}

// Define creates a definition and binds it to name.
func (r *Registry) Define(name, color string, bold, italic bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("style name is required")
	}
	fg, err := NormalizeColor(color)
	if err != nil {
		return fmt.Errorf("style %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("define %q: %w", name, ErrSealed)
	}
	if _, exists := r.styles[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateStyle, name)
	}
	r.styles[name] = Definition{Foreground: fg, Bold: bold, Italic: italic}
	r.order = append(r.order, name)
	return nil
}

// Resolve looks up a definition by name.
func (r *Registry) Resolve(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.styles[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return def, nil
}

// MustResolve is Resolve for names already validated at registration time.
func (r *Registry) MustResolve(name string) Definition {
	def, err := r.Resolve(name)
	if err != nil {
		panic(err)
	}
	return def
}

// Has reports whether name is defined.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.styles[name]
	return ok
}

// Names returns the defined names in definition order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// NormalizeColor validates a color and returns its canonical form.
// Accepts "" (terminal default), "#rgb", "#rrggbb" and ANSI indexes 0-255.
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return "", nil
	}
	if n, err := strconv.Atoi(color); err == nil {
		if n < 0 || n > 255 {
			return "", fmt.Errorf("ansi color %d out of range 0-255", n)
		}
		return strconv.Itoa(n), nil
	}
	if len(color) == 4 && color[0] == '#' {
		color = "#" + strings.Repeat(color[1:2], 2) + strings.Repeat(color[2:3], 2) + strings.Repeat(color[3:4], 2)
	}
	c, err := colorful.Hex(color)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", color, err)
	}
	return c.Hex(), nil
}

// RGB formats an 8-bit RGB triple as "#rrggbb".
func RGB(r, g, b uint8) string {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hex()
}
