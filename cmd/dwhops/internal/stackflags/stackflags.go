// Package stackflags resolves the stack config selected by the global flags.
package stackflags

import (
	"github.com/samsarahq/go/oops"
	"github.com/spf13/cobra"

	"github.com/koljamaier/aws-dwh/config/stackconfig"
)

// Config loads --config when set, else the --variant built-in (the default
// variant when both are unset).
func Config(cmd *cobra.Command) (stackconfig.StackConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	variant, _ := cmd.Flags().GetString("variant")

	if path != "" {
		if variant != "" {
			return stackconfig.StackConfig{}, oops.Errorf("--config and --variant are mutually exclusive")
		}
		return stackconfig.Load(path)
	}
	if variant == "" {
		return stackconfig.Default(), nil
	}
	return stackconfig.ForVariant(variant)
}

// RunOptions reads the global --dry-run and --yes flags.
func RunOptions(cmd *cobra.Command) (dryRun bool, skipConfirm bool) {
	dryRun, _ = cmd.Flags().GetBool("dry-run")
	skipConfirm, _ = cmd.Flags().GetBool("yes")
	return dryRun, skipConfirm
}
