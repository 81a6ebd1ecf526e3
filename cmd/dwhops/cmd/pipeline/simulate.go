package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/koljamaier/aws-dwh/cmd/dwhops/internal/runner"
	"github.com/koljamaier/aws-dwh/cmd/dwhops/internal/stackflags"
	"github.com/koljamaier/aws-dwh/dwhops/pipelineops"
)

func simulateCmd() *cobra.Command {
	var (
		input     string
		failState string
		nullCount int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the state machine locally",
		Long: `Build the pipeline definition for the selected config and run it in
process. EMR calls return canned results, the crawler trigger and the quality
check run their real logic against in-memory services.

The trace shows every state's output, so the data passed between states can
be checked before deploying.`,
		Example: `  dwhops pipeline simulate
  dwhops pipeline simulate --variant=EmrTest
  dwhops pipeline simulate --null-count=3
  dwhops pipeline simulate --fail-state=TerminateCluster`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := stackflags.Config(cmd)
			if err != nil {
				return err
			}
			dryRun, _ := stackflags.RunOptions(cmd)

			op := pipelineops.NewSimulateOp(cfg, input)
			op.FailState = failState
			op.NullCount = nullCount

			// Nothing leaves the process - always skip confirm
			return runner.Run(cmd.Context(), op, runner.Options{
				DryRun:      dryRun,
				SkipConfirm: true,
			})
		},
	}

	cmd.Flags().StringVar(&input, "input", "{}", "Execution input JSON object")
	cmd.Flags().StringVar(&failState, "fail-state", "", "Make this state's task fail")
	cmd.Flags().IntVar(&nullCount, "null-count", 0, "Count the simulated quality query returns")

	return cmd
}
