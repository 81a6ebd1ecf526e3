// Package dwhops provides the operational automation behind the dwhops CLI:
// synthesizing and deploying the stack, and starting, checking and
// simulating the pipeline.
package dwhops

import "context"

// Operation defines the contract every dwhops operation implements.
//
// The runner calls the methods in order: Validate -> Plan -> Execute.
// Operations only implement their own logic; the runner handles:
//   - calling Validate() first to check inputs
//   - calling Plan() to show what will happen (dry-run)
//   - prompting for confirmation (unless --yes)
//   - calling Execute() to perform the action
//
// Each operation defines its own result struct. Callers use type assertion:
//
//	result, err := dwhops.Run(ctx, op)
//	synth := result.(*stackops.SynthResult)
type Operation interface {
	// Name returns the operation identifier (e.g., "stack-synth").
	Name() string

	// Description returns a short description of what this operation does.
	Description() string

	// Validate checks that all required inputs are provided and valid.
	Validate(ctx context.Context) error

	// Plan shows what would happen without making changes (dry-run).
	Plan(ctx context.Context) error

	// Execute performs the operation and returns its typed result.
	// Only called after Plan() and user confirmation.
	Execute(ctx context.Context) (any, error)
}

// Run executes an operation with the standard flow: Validate -> Plan -> Execute.
// This is for programmatic use (no confirmation prompts).
func Run(ctx context.Context, op Operation) (any, error) {
	if err := op.Validate(ctx); err != nil {
		return nil, err
	}
	if err := op.Plan(ctx); err != nil {
		return nil, err
	}
	return op.Execute(ctx)
}
