package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingOp struct {
	validated, planned, executed int
}

func (o *countingOp) Name() string        { return "counting" }
func (o *countingOp) Description() string { return "counts calls" }

func (o *countingOp) Validate(ctx context.Context) error {
	o.validated++
	return nil
}

func (o *countingOp) Plan(ctx context.Context) error {
	o.planned++
	return nil
}

func (o *countingOp) Execute(ctx context.Context) (any, error) {
	o.executed++
	return nil, nil
}

func TestRun(t *testing.T) {
	declined := errors.New("operation cancelled by user")

	testCases := map[string]struct {
		opts           Options
		expectExecuted bool
		expectErr      error
	}{
		"dryRunStopsAfterPlan": {
			opts: Options{DryRun: true, Confirm: func(string) error { panic("prompted") }},
		},
		"skipConfirm": {
			opts:           Options{SkipConfirm: true, Confirm: func(string) error { panic("prompted") }},
			expectExecuted: true,
		},
		"confirmed": {
			opts:           Options{Confirm: func(string) error { return nil }},
			expectExecuted: true,
		},
		"declined": {
			opts:      Options{Confirm: func(string) error { return declined }},
			expectErr: declined,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			op := &countingOp{}
			err := Run(context.Background(), op, tc.opts)
			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, 1, op.validated)
			assert.Equal(t, 1, op.planned)
			assert.Equal(t, tc.expectExecuted, op.executed == 1)
		})
	}
}
