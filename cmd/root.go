// Package cmd implements the xshell command line.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/xshell/internal/config"
	"github.com/zjrosen/xshell/internal/log"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply cannot race with the input loop.
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".xshell/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	cfg        = config.Defaults()
	debugFlag  bool
	logFile    string
	colorMode  string
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "xshell",
	Short: "Compile and highlight X# programs",
	Long: `xshell compiles X# source files to assembly through a lex, parse and
generate pipeline, renders syntax-highlighted source and assembly, keeps a
history of compiles and can watch a file for edits.

The parse and generate stages are provided by a Lua translator script
configured with translator.script.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .xshell/config.yaml, then ~/.config/xshell/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging (also XSHELL_DEBUG=1)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "debug.log",
		"debug log path")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto",
		"color output: auto, always or never")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .xshell/config.yaml (current directory)
		// 2. ~/.config/xshell/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "xshell"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .xshell/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				viper.SetConfigFile(localConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	cfg = config.Defaults()
	_ = viper.Unmarshal(&cfg)
}

// setup starts logging and checks the loaded configuration.
func setup(cmd *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv("XSHELL_DEBUG") != "" {
		cleanup, err := log.Init(logFile)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "xshell starting", "command", cmd.Name(), "config", viper.ConfigFileUsed())
	}

	if err := applyColorMode(colorMode); err != nil {
		return err
	}

	// config commands must work on a config that does not validate yet.
	if cmd.Parent() == configCmd {
		return nil
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func teardown(*cobra.Command, []string) error {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return nil
}

func applyColorMode(mode string) error {
	switch mode {
	case "auto", "":
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		return fmt.Errorf("--color must be auto, always or never, got %q", mode)
	}
	return nil
}

// configPath is the config file in use, or the local default when none was loaded.
func configPath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return localConfigPath
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
