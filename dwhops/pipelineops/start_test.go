package pipelineops

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/benbjohnson/clock"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/koljamaier/aws-dwh/config/stackconfig"
	"github.com/koljamaier/aws-dwh/vendormocks/mock_pipelineops"
)

const (
	testStateMachineArn = "arn:aws:states:us-west-2:123456789012:stateMachine:aws-dwh-EMRSparkifyDWH"
	testExecutionArn    = "arn:aws:states:us-west-2:123456789012:execution:aws-dwh-EMRSparkifyDWH:run"
)

func newTestStartOp(client SFNAPI, clk clock.Clock, wait bool) *StartOp {
	op := NewStartOp(stackconfig.Default(), `{"run":1}`, wait)
	op.sfnClient = client
	op.clock = clk
	op.limiter = rate.NewLimiter(rate.Inf, 1)
	op.poll = backoff.Backoff{Min: time.Millisecond, Max: time.Millisecond}
	return op
}

// advance keeps moving clk forward until the returned stop func is called.
func advance(clk *clock.Mock) (stop func()) {
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				clk.Add(time.Millisecond)
			}
		}
	}()
	return func() { close(done) }
}

func expectList(client *mock_pipelineops.MockSFNAPI) {
	client.EXPECT().ListStateMachines(gomock.Any(), gomock.Any(), gomock.Any()).Return(&sfn.ListStateMachinesOutput{
		StateMachines: []types.StateMachineListItem{
			{Name: aws.String("other"), StateMachineArn: aws.String("arn:other")},
			{Name: aws.String("aws-dwh-EMRSparkifyDWH"), StateMachineArn: aws.String(testStateMachineArn)},
		},
	}, nil)
}

func expectStart(t *testing.T, client *mock_pipelineops.MockSFNAPI) {
	client.EXPECT().StartExecution(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, input *sfn.StartExecutionInput, opts ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error) {
			assert.Equal(t, testStateMachineArn, aws.ToString(input.StateMachineArn))
			assert.Equal(t, `{"run":1}`, aws.ToString(input.Input))
			_, err := uuid.Parse(aws.ToString(input.Name))
			assert.NoError(t, err)
			return &sfn.StartExecutionOutput{ExecutionArn: aws.String(testExecutionArn)}, nil
		})
}

func describe(status types.ExecutionStatus) *sfn.DescribeExecutionOutput {
	return &sfn.DescribeExecutionOutput{ExecutionArn: aws.String(testExecutionArn), Status: status}
}

func TestStartOp(t *testing.T) {
	testCases := map[string]struct {
		wait           bool
		statuses       []*sfn.DescribeExecutionOutput
		expectedStatus string
		expectedOutput string
		errorExpected  string
	}{
		"noWait": {},
		"waitSucceeds": {
			wait: true,
			statuses: []*sfn.DescribeExecutionOutput{
				describe(types.ExecutionStatusRunning),
				{Status: types.ExecutionStatusSucceeded, Output: aws.String(`"quality check passed"`)},
			},
			expectedStatus: "SUCCEEDED",
			expectedOutput: `"quality check passed"`,
		},
		"waitFails": {
			wait: true,
			statuses: []*sfn.DescribeExecutionOutput{
				{Status: types.ExecutionStatusFailed, Error: aws.String("States.TaskFailed"), Cause: aws.String("step failed")},
			},
			expectedStatus: "FAILED",
			errorExpected:  "FAILED: States.TaskFailed: step failed",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			ctx := context.Background()

			client := mock_pipelineops.NewMockSFNAPI(ctrl)
			expectList(client)
			expectStart(t, client)
			var calls []*gomock.Call
			for _, status := range tc.statuses {
				calls = append(calls, client.EXPECT().DescribeExecution(gomock.Any(), gomock.Any()).Return(status, nil))
			}
			if len(calls) > 0 {
				gomock.InOrder(calls...)
			}

			op := newTestStartOp(client, clock.New(), tc.wait)
			require.NoError(t, op.Validate(ctx))
			require.NoError(t, op.Plan(ctx))
			out, err := op.Execute(ctx)
			if tc.errorExpected != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorExpected)
			} else {
				require.NoError(t, err)
			}

			result := out.(*StartResult)
			assert.Equal(t, testExecutionArn, result.ExecutionArn)
			assert.Equal(t, testStateMachineArn, result.StateMachineArn)
			assert.Equal(t, tc.expectedStatus, result.Status)
			if tc.expectedOutput != "" {
				assert.JSONEq(t, tc.expectedOutput, string(result.Output))
			}
		})
	}
}

func TestStartOpWaitTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	clk := clock.NewMock()
	client := mock_pipelineops.NewMockSFNAPI(ctrl)
	expectList(client)
	expectStart(t, client)
	client.EXPECT().DescribeExecution(gomock.Any(), gomock.Any()).Return(describe(types.ExecutionStatusRunning), nil).
		Do(func(ctx context.Context, input *sfn.DescribeExecutionInput, opts ...func(*sfn.Options)) {
			clk.Add(time.Hour)
		}).Times(2)

	op := newTestStartOp(client, clk, true)
	op.Timeout = 90 * time.Minute
	require.NoError(t, op.Validate(ctx))
	require.NoError(t, op.Plan(ctx))
	defer advance(clk)()
	_, err := op.Execute(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still RUNNING after 1h30m0s")
}

func TestStartOpPollsOnClock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	clk := clock.NewMock()
	client := mock_pipelineops.NewMockSFNAPI(ctrl)
	expectList(client)
	expectStart(t, client)
	gomock.InOrder(
		client.EXPECT().DescribeExecution(gomock.Any(), gomock.Any()).Return(describe(types.ExecutionStatusRunning), nil),
		client.EXPECT().DescribeExecution(gomock.Any(), gomock.Any()).Return(describe(types.ExecutionStatusSucceeded), nil),
	)

	op := newTestStartOp(client, clk, true)
	require.NoError(t, op.Validate(ctx))
	require.NoError(t, op.Plan(ctx))

	done := make(chan error, 1)
	go func() {
		_, err := op.Execute(ctx)
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("execution finished before the clock moved")
	case <-time.After(20 * time.Millisecond):
	}

	stop := advance(clk)
	defer stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("execution still waiting after the clock moved")
	}
}

func TestStartOpErrors(t *testing.T) {
	testCases := map[string]struct {
		input         string
		setup         func(client *mock_pipelineops.MockSFNAPI)
		validateFails bool
		errorExpected string
	}{
		"invalidInput": {
			input:         "{not json",
			validateFails: true,
			errorExpected: "--input is not valid JSON",
		},
		"stateMachineNotDeployed": {
			input: "{}",
			setup: func(client *mock_pipelineops.MockSFNAPI) {
				client.EXPECT().ListStateMachines(gomock.Any(), gomock.Any(), gomock.Any()).Return(&sfn.ListStateMachinesOutput{}, nil)
			},
			errorExpected: "state machine aws-dwh-EMRSparkifyDWH not found",
		},
		"listFails": {
			input: "{}",
			setup: func(client *mock_pipelineops.MockSFNAPI) {
				client.EXPECT().ListStateMachines(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("throttled"))
			},
			errorExpected: "throttled",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			ctx := context.Background()

			client := mock_pipelineops.NewMockSFNAPI(ctrl)
			if tc.setup != nil {
				tc.setup(client)
			}
			op := newTestStartOp(client, clock.New(), false)
			op.Input = tc.input

			err := op.Validate(ctx)
			if !tc.validateFails {
				require.NoError(t, err)
				err = op.Plan(ctx)
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorExpected)
		})
	}
}
