// Package runner provides a standardized execution flow for dwhops CLI commands.
package runner

import (
	"context"

	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"

	"github.com/koljamaier/aws-dwh/cmd/dwhops/internal/confirm"
	"github.com/koljamaier/aws-dwh/dwhops"
)

// Options configures how an operation is executed.
type Options struct {
	// DryRun shows what would happen without making changes.
	DryRun bool

	// SkipConfirm skips interactive confirmation prompts.
	SkipConfirm bool

	// Confirm overrides the interactive prompt.
	Confirm func(message string) error
}

// Run executes an operation with the standard flow:
//
//  1. Validate() - Check inputs
//  2. Plan() - Show what will happen (dry-run output)
//  3. Confirm - Ask user to proceed (unless --yes or --dry-run)
//  4. Execute() - Perform the action
//
// Operations handle their own console output in each method.
func Run(ctx context.Context, op dwhops.Operation, opts Options) error {
	log := logrus.WithField("operation", op.Name())

	log.Debug("validating operation")
	if err := op.Validate(ctx); err != nil {
		return oops.Wrapf(err, "validation failed")
	}

	log.Debug("planning operation")
	if err := op.Plan(ctx); err != nil {
		return oops.Wrapf(err, "planning failed")
	}

	if opts.DryRun {
		log.Info("dry run, stopping before execution")
		return nil
	}

	if !opts.SkipConfirm {
		prompt := opts.Confirm
		if prompt == nil {
			prompt = confirm.Prompt
		}
		if err := prompt("Proceed with execution?"); err != nil {
			return err
		}
	}

	log.Debug("executing operation")
	if _, err := op.Execute(ctx); err != nil {
		return oops.Wrapf(err, "execution failed")
	}
	return nil
}
