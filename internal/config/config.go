// Package config provides configuration types, defaults, and persistence for xshell.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/xshell/internal/log"
	"github.com/zjrosen/xshell/internal/pipeline"
	"github.com/zjrosen/xshell/internal/tracing"
)

// Config holds all user configuration.
type Config struct {
	Translator TranslatorConfig `mapstructure:"translator"`
	Highlight  HighlightConfig  `mapstructure:"highlight"`
	History    HistoryConfig    `mapstructure:"history"`
	Watch      WatchConfig      `mapstructure:"watch"`
	Tracing    tracing.Config   `mapstructure:"tracing"`
	Flags      map[string]bool  `mapstructure:"flags"`
}

// TranslatorConfig selects the translator and where its output goes.
type TranslatorConfig struct {
	Script    string `mapstructure:"script"`     // Lua file defining parse and generate
	SourceExt string `mapstructure:"source_ext"` // e.g. ".xs"
	TargetExt string `mapstructure:"target_ext"` // e.g. ".xasm"
	OutputDir string `mapstructure:"output_dir"` // artifacts are written here

	SuppressTrailingInstruction bool `mapstructure:"suppress_trailing_instruction"`
}

// Options returns the pipeline options this config asks for.
func (t TranslatorConfig) Options() pipeline.Options {
	return pipeline.Options{SuppressTrailingInstruction: t.SuppressTrailingInstruction}
}

// HighlightConfig controls the two highlighting engines.
type HighlightConfig struct {
	Cache         bool          `mapstructure:"cache"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	MatchTimeout  time.Duration `mapstructure:"match_timeout"`
	SourceRules   string        `mapstructure:"source_rules"`   // YAML/TOML ruleset; empty uses the built-in X# rules
	AssemblyRules string        `mapstructure:"assembly_rules"` // YAML/TOML ruleset; empty uses the built-in assembly rules
}

// HistoryConfig controls the compile history database.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultHistoryPath returns ~/.xshell/history.db, or "" without a home directory.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".xshell", "history.db")
}

// DefaultTracesFilePath returns ~/.xshell/traces/traces.jsonl, or "" without a home directory.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".xshell", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()
	return Config{
		Translator: TranslatorConfig{
			SourceExt: ".xs",
			TargetExt: ".xasm",
			OutputDir: "assembly",
		},
		Highlight: HighlightConfig{
			Cache:        true,
			CacheTTL:     5 * time.Minute,
			MatchTimeout: 250 * time.Millisecond,
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  DefaultHistoryPath(),
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Tracing: tr,
		Flags:   map[string]bool{},
	}
}

// Validate checks the whole config.
func Validate(c Config) error {
	if err := ValidateTranslator(c.Translator); err != nil {
		return err
	}
	if err := ValidateHighlight(c.Highlight); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path is required when history is enabled")
	}
	return ValidateTracing(c.Tracing)
}

// ValidateTranslator checks extensions and paths.
func ValidateTranslator(t TranslatorConfig) error {
	for key, ext := range map[string]string{"source_ext": t.SourceExt, "target_ext": t.TargetExt} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("translator.%s must start with '.', got %q", key, ext)
		}
		if strings.ContainsAny(ext[1:], `./\`) {
			return fmt.Errorf("translator.%s must be a single extension, got %q", key, ext)
		}
	}
	if strings.EqualFold(t.SourceExt, t.TargetExt) {
		return fmt.Errorf("translator.source_ext and translator.target_ext must differ, both are %q", t.SourceExt)
	}
	return nil
}

// ValidateHighlight checks durations.
func ValidateHighlight(h HighlightConfig) error {
	if h.CacheTTL < 0 {
		return fmt.Errorf("highlight.cache_ttl must not be negative, got %s", h.CacheTTL)
	}
	if h.MatchTimeout < 0 {
		return fmt.Errorf("highlight.match_timeout must not be negative, got %s", h.MatchTimeout)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	switch t.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}

	if t.Enabled {
		if t.Exporter == tracing.ExporterFile && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == tracing.ExporterOTLP && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# xshell configuration

translator:
  # Lua script defining parse(tokens) and generate(ast, options)
  # script: ./translator.lua
  source_ext: .xs
  target_ext: .xasm
  output_dir: assembly            # successful compiles are written here
  suppress_trailing_instruction: false

highlight:
  cache: true                     # memoise spans per line
  cache_ttl: 5m
  match_timeout: 250ms            # per rule, per line
  # Custom rule sets (YAML or TOML). Run 'xshell rules xsharp' for the format.
  # source_rules: ./rules/xsharp.yaml
  # assembly_rules: ./rules/assembly.toml

history:
  enabled: true
  # db_path: ~/.xshell/history.db

watch:
  debounce: 100ms

# tracing:
#   enabled: false
#   exporter: file                # none, file, stdout, otlp
#   file_path: ~/.xshell/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# flags:
#   assembly-diff: true           # show what changed between compiles in watch mode
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
