package dwhops

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOp struct {
	calls  []string
	failAt string
	result any
}

func (o *recordingOp) Name() string        { return "recording" }
func (o *recordingOp) Description() string { return "records calls" }

func (o *recordingOp) step(name string) error {
	o.calls = append(o.calls, name)
	if o.failAt == name {
		return errors.New(name + " failed")
	}
	return nil
}

func (o *recordingOp) Validate(ctx context.Context) error { return o.step("validate") }
func (o *recordingOp) Plan(ctx context.Context) error     { return o.step("plan") }

func (o *recordingOp) Execute(ctx context.Context) (any, error) {
	if err := o.step("execute"); err != nil {
		return nil, err
	}
	return o.result, nil
}

func TestRun(t *testing.T) {
	testCases := map[string]struct {
		failAt        string
		expectedCalls []string
	}{
		"allSteps":      {expectedCalls: []string{"validate", "plan", "execute"}},
		"validateFails": {failAt: "validate", expectedCalls: []string{"validate"}},
		"planFails":     {failAt: "plan", expectedCalls: []string{"validate", "plan"}},
		"executeFails":  {failAt: "execute", expectedCalls: []string{"validate", "plan", "execute"}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			op := &recordingOp{failAt: tc.failAt, result: "done"}
			result, err := Run(context.Background(), op)
			assert.Equal(t, tc.expectedCalls, op.calls)
			if tc.failAt != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.failAt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "done", result)
		})
	}
}
