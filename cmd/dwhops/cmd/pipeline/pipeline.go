// Package pipeline provides the pipeline CLI commands for dwhops.
package pipeline

import "github.com/spf13/cobra"

// Command returns the pipeline parent command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Pipeline operations",
		Long: `Commands that operate the deployed ETL state machine.

Available operations:
  • start         - Start an execution, optionally waiting for the result
  • quality-check - Run the data quality query from this machine
  • simulate      - Run the state machine locally against simulated services`,
		Example: `  # Start and wait
  dwhops pipeline start --wait

  # Check the quality through a local Presto
  dwhops pipeline quality-check --engine=presto --presto-dsn=http://user@localhost:8080?catalog=hive&schema=default

  # Simulate a failing spark job
  dwhops pipeline simulate --fail-state=RunSparkJob`,
	}

	cmd.AddCommand(startCmd())
	cmd.AddCommand(qualityCheckCmd())
	cmd.AddCommand(simulateCmd())

	return cmd
}
