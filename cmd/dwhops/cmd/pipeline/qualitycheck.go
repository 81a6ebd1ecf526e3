package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/koljamaier/aws-dwh/cmd/dwhops/internal/runner"
	"github.com/koljamaier/aws-dwh/cmd/dwhops/internal/stackflags"
	"github.com/koljamaier/aws-dwh/dwhops/pipelineops"
)

func qualityCheckCmd() *cobra.Command {
	var (
		engine    string
		prestoDSN string
	)

	cmd := &cobra.Command{
		Use:   "quality-check",
		Short: "Run the data quality check",
		Long: `Count the artists without a name in the crawled tables and print the
same verdict the quality check lambda returns.

Engines:
  • athena - the stack's Athena database, results in the athena results bucket
  • presto - any Presto endpoint with the same tables, given by --presto-dsn`,
		Example: `  dwhops pipeline quality-check
  dwhops pipeline quality-check --engine=presto --presto-dsn=http://user@localhost:8080?catalog=hive&schema=default`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := stackflags.Config(cmd)
			if err != nil {
				return err
			}
			dryRun, _ := stackflags.RunOptions(cmd)

			op := pipelineops.NewQualityCheckOp(cfg, engine, prestoDSN)

			// Read-only operation - always skip confirm
			return runner.Run(cmd.Context(), op, runner.Options{
				DryRun:      dryRun,
				SkipConfirm: true,
			})
		},
	}

	cmd.Flags().StringVar(&engine, "engine", pipelineops.EngineAthena, "Query engine: athena or presto")
	cmd.Flags().StringVar(&prestoDSN, "presto-dsn", "", "Presto DSN (required with --engine=presto)")

	return cmd
}
