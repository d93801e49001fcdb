// Package ruleset describes highlighting rule sets declaratively and builds
// them into engines.
package ruleset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/xshell/internal/highlight"
	"github.com/zjrosen/xshell/internal/log"
	"github.com/zjrosen/xshell/internal/style"
)

// StyleSpec declares one named style.
type StyleSpec struct {
	Name   string `yaml:"name" toml:"name"`
	Color  string `yaml:"color" toml:"color"`
	Bold   bool   `yaml:"bold,omitempty" toml:"bold,omitempty"`
	Italic bool   `yaml:"italic,omitempty" toml:"italic,omitempty"`
}

// RuleSpec declares one (pattern, style) rule.
type RuleSpec struct {
	Pattern string `yaml:"pattern" toml:"pattern"`
	Style   string `yaml:"style" toml:"style"`
}

// Spec is a complete rule set: styles first, then rules in application order.
type Spec struct {
	Name   string      `yaml:"name" toml:"name"`
	Styles []StyleSpec `yaml:"styles" toml:"styles"`
	Rules  []RuleSpec  `yaml:"rules" toml:"rules"`
}

// ErrUnsupportedFormat is returned by Load for files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported ruleset format")

// Load reads a rule set from a .yaml, .yml or .toml file. A missing name
// defaults to the file's base name.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from user config
	if err != nil {
		return Spec{}, fmt.Errorf("reading ruleset: %w", err)
	}

	var spec Spec
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &spec)
	case ".toml":
		err = toml.Unmarshal(data, &spec)
	default:
		return Spec{}, fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Spec{}, fmt.Errorf("parsing ruleset %s: %w", path, err)
	}

	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	log.Debug(log.CatConfig, "loaded ruleset", "path", path, "styles", len(spec.Styles), "rules", len(spec.Rules))
	return spec, nil
}

// LoadOr loads path, or returns fallback when path is empty.
func LoadOr(path string, fallback Spec) (Spec, error) {
	if path == "" {
		return fallback, nil
	}
	return Load(path)
}

// Build creates a sealed style registry from the spec's styles and an engine
// with its rules registered in order. The first bad style or rule fails the
// whole build.
func Build(spec Spec, opts ...highlight.Option) (*highlight.Engine, error) {
	reg := style.NewRegistry()
	for _, s := range spec.Styles {
		if err := reg.Define(s.Name, s.Color, s.Bold, s.Italic); err != nil {
			return nil, fmt.Errorf("ruleset %q: %w", spec.Name, err)
		}
	}
	reg.Seal()

	opts = append([]highlight.Option{highlight.WithName(spec.Name)}, opts...)
	engine := highlight.NewEngine(reg, opts...)
	for i, r := range spec.Rules {
		if err := engine.Register(r.Pattern, r.Style); err != nil {
			return nil, fmt.Errorf("ruleset %q rule %d: %w", spec.Name, i, err)
		}
	}
	return engine, nil
}

// Encode renders the spec as YAML or TOML in the layout Load accepts.
func (s Spec) Encode(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		return yaml.Marshal(s)
	case "toml":
		return toml.Marshal(s)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}
