package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/xshell/internal/ruleset"
)

var rulesFormat string

var rulesCmd = &cobra.Command{
	Use:   "rules [xsharp|assembly]",
	Short: "Print a built-in rule set",
	Long: `Print a built-in highlighting rule set in the format accepted by
highlight.source_rules and highlight.assembly_rules. Use it as a starting
point for a custom rule set.

Examples:
  xshell rules > rules/xsharp.yaml
  xshell rules assembly --format toml > rules/assembly.toml`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"xsharp", "assembly"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "xsharp"
		if len(args) == 1 {
			name = args[0]
		}
		spec, err := builtinRuleset(name)
		if err != nil {
			return err
		}
		data, err := spec.Encode(rulesFormat)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rulesCmd.Flags().StringVarP(&rulesFormat, "format", "f", "yaml", "output format: yaml or toml")
	rootCmd.AddCommand(rulesCmd)
}

func builtinRuleset(name string) (ruleset.Spec, error) {
	switch name {
	case "xsharp", "x#":
		return ruleset.XSharp(), nil
	case "assembly", "asm":
		return ruleset.Assembly(), nil
	default:
		return ruleset.Spec{}, fmt.Errorf("unknown rule set %q (want xsharp or assembly)", name)
	}
}
