package pipeline

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/koljamaier/aws-dwh/cmd/dwhops/internal/runner"
	"github.com/koljamaier/aws-dwh/cmd/dwhops/internal/stackflags"
	"github.com/koljamaier/aws-dwh/dwhops/pipelineops"
)

func startCmd() *cobra.Command {
	var (
		stateMachineArn string
		input           string
		wait            bool
		timeout         time.Duration
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a pipeline execution",
		Long: `Start an execution of the deployed state machine. The execution is
named with a random UUID.

With --wait, the execution is polled until it leaves RUNNING, and a failed,
timed out or aborted execution is reported as an error.`,
		Example: `  dwhops pipeline start
  dwhops pipeline start --wait --timeout=90m
  dwhops pipeline start --input='{"run":"backfill"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := stackflags.Config(cmd)
			if err != nil {
				return err
			}
			dryRun, skipConfirm := stackflags.RunOptions(cmd)

			op := pipelineops.NewStartOp(cfg, input, wait)
			op.StateMachineArn = stateMachineArn
			op.Timeout = timeout
			return runner.Run(cmd.Context(), op, runner.Options{
				DryRun:      dryRun,
				SkipConfirm: skipConfirm,
			})
		},
	}

	cmd.Flags().StringVar(&stateMachineArn, "arn", "", "State machine ARN (looked up by name when empty)")
	cmd.Flags().StringVar(&input, "input", "{}", "Execution input JSON")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the execution to finish")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Hour, "Give up waiting after this long")

	return cmd
}
