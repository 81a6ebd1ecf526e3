// Package cmd provides the CLI commands for dwhops.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/koljamaier/aws-dwh/cmd/dwhops/cmd/pipeline"
	"github.com/koljamaier/aws-dwh/cmd/dwhops/cmd/stack"
)

var rootCmd = &cobra.Command{
	Use:   "dwhops",
	Short: "Data warehouse stack and pipeline operations",
	Long: `dwhops builds, deploys and operates the EMR data warehouse stack.

Every command validates its inputs and prints a plan first. Commands that
change anything ask for confirmation before running (use --yes to skip),
and --dry-run stops after the plan.

Tool Groups:
  • stack    - Render the Terraform projects and apply them
  • pipeline - Start, check and simulate the ETL state machine`,
	Example: `  # Render the stack into ./build
  dwhops stack synth --out=build

  # Deploy the test variant without the post-processing lambdas
  dwhops stack deploy --variant=EmrTest --out=build

  # Start the pipeline and wait for it to finish
  dwhops pipeline start --wait

  # Run the state machine locally against simulated services
  dwhops pipeline simulate --fail-state=RunSparkJob`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setUpLogger(verbose)
	},
}

// Root exports the root command for doc generation and testing.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	setUpLogger(false)
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func setUpLogger(verbose bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.InfoLevel)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// printError prints the root cause first and the full oops trace after it.
func printError(err error) {
	fmt.Println()
	fmt.Println("❌ Error:", getRootCause(err))
	fmt.Println()
	fmt.Println("Stack trace:")
	fmt.Println(err.Error())
}

// getRootCause returns the first line of an oops error, which is the
// cause's message. Wrap reasons follow in the stack trace printError shows.
func getRootCause(err error) string {
	if err == nil {
		return ""
	}
	lines := strings.Split(err.Error(), "\n")
	if len(lines) > 0 && lines[0] != "" {
		return lines[0]
	}
	return oops.Cause(err).Error()
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().Bool("dry-run", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().Bool("yes", false, "Skip confirmation prompts (use with caution)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Stack config YAML (defaults to the built-in variant)")
	rootCmd.PersistentFlags().String("variant", "", "Built-in stack variant to use when --config is not set")

	rootCmd.AddCommand(stack.Command())
	rootCmd.AddCommand(pipeline.Command())
}
