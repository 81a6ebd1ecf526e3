// Package stack provides the stack CLI commands for dwhops.
package stack

import "github.com/spf13/cobra"

// Command returns the stack parent command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Stack operations",
		Long: `Commands that render and deploy the stack's Terraform projects.

Available operations:
  • synth  - Build the lambdas and write the Terraform JSON projects
  • deploy - Synth, then terraform init and apply every project`,
		Example: `  # Render the default variant
  dwhops stack synth --out=build

  # Render a custom config
  dwhops stack synth --config=stack.yaml --out=build

  # Show the deploy plan without applying
  dwhops stack deploy --out=build --dry-run`,
	}

	cmd.AddCommand(synthCmd())
	cmd.AddCommand(deployCmd())

	return cmd
}

func addRepoFlags(cmd *cobra.Command, repoRoot *string, outDir *string) {
	cmd.Flags().StringVar(repoRoot, "repo-root", ".", "Module root the lambdas and the spark script are read from")
	cmd.Flags().StringVar(outDir, "out", "build/terraform", "Directory the projects are written to")
}
