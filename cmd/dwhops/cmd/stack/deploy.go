package stack

import (
	"github.com/spf13/cobra"

	"github.com/koljamaier/aws-dwh/cmd/dwhops/internal/runner"
	"github.com/koljamaier/aws-dwh/cmd/dwhops/internal/stackflags"
	"github.com/koljamaier/aws-dwh/dwhops/stackops"
)

func deployCmd() *cobra.Command {
	var (
		repoRoot string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Synthesize and apply the stack",
		Long: `Render the stack like synth, then run terraform init and terraform apply
in every project directory.

The plan shows:
  • The AWS account and caller that will deploy
  • The region
  • Which stack buckets exist already

terraform apply runs with -auto-approve once you confirm.`,
		Example: `  # Deploy the default variant
  dwhops stack deploy --out=build/terraform

  # Deploy without prompting (use with caution)
  dwhops stack deploy --out=build/terraform --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := stackflags.Config(cmd)
			if err != nil {
				return err
			}
			dryRun, skipConfirm := stackflags.RunOptions(cmd)

			op := stackops.NewDeployOp(stackops.NewSynthOp(cfg, repoRoot, outDir))
			return runner.Run(cmd.Context(), op, runner.Options{
				DryRun:      dryRun,
				SkipConfirm: skipConfirm,
			})
		},
	}

	addRepoFlags(cmd, &repoRoot, &outDir)
	return cmd
}
