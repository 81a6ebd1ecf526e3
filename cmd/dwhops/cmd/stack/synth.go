package stack

import (
	"github.com/spf13/cobra"

	"github.com/koljamaier/aws-dwh/cmd/dwhops/internal/runner"
	"github.com/koljamaier/aws-dwh/cmd/dwhops/internal/stackflags"
	"github.com/koljamaier/aws-dwh/dwhops/stackops"
)

func synthCmd() *cobra.Command {
	var (
		repoRoot string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Render the Terraform projects",
		Long: `Build the Go lambdas for arm64, zip each as bootstrap, and write one
Terraform JSON project per directory under --out:

  • dwh     - buckets, roles, glue, lambdas and the state machine
  • example - an SQS queue subscribed to an SNS topic

Only local files are written, so no confirmation is asked.`,
		Example: `  dwhops stack synth --out=build/terraform`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := stackflags.Config(cmd)
			if err != nil {
				return err
			}
			dryRun, _ := stackflags.RunOptions(cmd)

			op := stackops.NewSynthOp(cfg, repoRoot, outDir)
			return runner.Run(cmd.Context(), op, runner.Options{
				DryRun:      dryRun,
				SkipConfirm: true,
			})
		},
	}

	addRepoFlags(cmd, &repoRoot, &outDir)
	return cmd
}
