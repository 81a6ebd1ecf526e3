// Package pipelineops starts, checks and simulates the data warehouse
// pipeline.
package pipelineops

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/koljamaier/aws-dwh/config/stackconfig"
)

//go:generate mockgen -destination=../../vendormocks/mock_pipelineops/mock_pipelineops.go -package=mock_pipelineops github.com/koljamaier/aws-dwh/dwhops/pipelineops SFNAPI

// SFNAPI is the subset of the Step Functions client the operations call.
type SFNAPI interface {
	ListStateMachines(ctx context.Context, params *sfn.ListStateMachinesInput, optFns ...func(*sfn.Options)) (*sfn.ListStateMachinesOutput, error)
	StartExecution(ctx context.Context, params *sfn.StartExecutionInput, optFns ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error)
	DescribeExecution(ctx context.Context, params *sfn.DescribeExecutionInput, optFns ...func(*sfn.Options)) (*sfn.DescribeExecutionOutput, error)
}

// defaultWaitTimeout covers cluster provisioning plus the spark job.
const defaultWaitTimeout = 2 * time.Hour

// StartResult is the typed result returned by StartOp.Execute().
type StartResult struct {
	StateMachineArn string          `json:"stateMachineArn"`
	ExecutionArn    string          `json:"executionArn"`
	ExecutionName   string          `json:"executionName"`
	Status          string          `json:"status,omitempty"`
	Output          json.RawMessage `json:"output,omitempty"`
}

// StartOp starts an execution of the pipeline state machine and optionally
// waits for it to finish.
type StartOp struct {
	// Inputs
	Config stackconfig.StackConfig
	// StateMachineArn skips the lookup by name when set.
	StateMachineArn string
	Input           string
	Wait            bool
	// Timeout bounds Wait.
	Timeout time.Duration

	// Clients
	sfnClient SFNAPI
	clock     clock.Clock
	limiter   *rate.Limiter
	poll      backoff.Backoff

	// Planned state
	stateMachineArn string
	executionName   string
}

func NewStartOp(cfg stackconfig.StackConfig, input string, wait bool) *StartOp {
	return &StartOp{
		Config:  cfg,
		Input:   input,
		Wait:    wait,
		Timeout: defaultWaitTimeout,
		clock:   clock.New(),
		// DescribeExecution is throttled per account.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		poll: backoff.Backoff{
			Min:    5 * time.Second,
			Max:    time.Minute,
			Factor: 1.5,
			Jitter: true,
		},
	}
}

func (o *StartOp) Name() string {
	return "pipeline-start"
}

func (o *StartOp) Description() string {
	return "Start an execution of the pipeline state machine"
}

func (o *StartOp) Validate(ctx context.Context) error {
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(o.Input) == "" {
		o.Input = "{}"
	}
	if !json.Valid([]byte(o.Input)) {
		return oops.Errorf("--input is not valid JSON")
	}
	if o.Wait && o.Timeout <= 0 {
		return oops.Errorf("--timeout must be positive")
	}

	if o.sfnClient == nil {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(o.Config.Region))
		if err != nil {
			return oops.Wrapf(err, "failed to load AWS config for region %s", o.Config.Region)
		}
		o.sfnClient = sfn.NewFromConfig(cfg)
	}
	return nil
}

func (o *StartOp) Plan(ctx context.Context) error {
	if o.sfnClient == nil {
		return oops.Errorf("Validate() must be called before Plan()")
	}

	o.stateMachineArn = o.StateMachineArn
	if o.stateMachineArn == "" {
		arn, err := findStateMachine(ctx, o.sfnClient, o.Config.StateMachineName())
		if err != nil {
			return err
		}
		o.stateMachineArn = arn
	}
	o.executionName = uuid.New().String()

	fmt.Println()
	fmt.Println("📋 Start pipeline execution")
	fmt.Printf("   State machine: %s\n", o.stateMachineArn)
	fmt.Printf("   Execution:     %s\n", o.executionName)
	fmt.Printf("   Input:         %s\n", o.Input)
	if o.Wait {
		fmt.Printf("   Wait:          up to %s\n", o.Timeout)
	}
	return nil
}

func (o *StartOp) Execute(ctx context.Context) (any, error) {
	if o.stateMachineArn == "" {
		return nil, oops.Errorf("Plan() must be called before Execute()")
	}

	started, err := o.sfnClient.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(o.stateMachineArn),
		Name:            aws.String(o.executionName),
		Input:           aws.String(o.Input),
	})
	if err != nil {
		return nil, oops.Wrapf(err, "start execution of %s", o.stateMachineArn)
	}
	result := &StartResult{
		StateMachineArn: o.stateMachineArn,
		ExecutionArn:    aws.ToString(started.ExecutionArn),
		ExecutionName:   o.executionName,
	}
	log := logrus.WithField("executionArn", result.ExecutionArn)
	log.Info("execution started")

	if !o.Wait {
		return result, nil
	}

	final, err := o.waitForExecution(ctx, result.ExecutionArn)
	if err != nil {
		return nil, err
	}
	result.Status = string(final.Status)
	if final.Output != nil {
		result.Output = json.RawMessage(aws.ToString(final.Output))
	}
	if final.Status != types.ExecutionStatusSucceeded {
		return result, oops.Errorf("execution %s %s: %s: %s",
			o.executionName, final.Status, aws.ToString(final.Error), aws.ToString(final.Cause))
	}
	log.WithField("status", result.Status).Info("execution finished")
	return result, nil
}

func (o *StartOp) waitForExecution(ctx context.Context, executionArn string) (*sfn.DescribeExecutionOutput, error) {
	poll := o.poll
	deadline := o.clock.Now().Add(o.Timeout)

	for {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, oops.Wrapf(err, "waiting for execution %s", executionArn)
		}
		out, err := o.sfnClient.DescribeExecution(ctx, &sfn.DescribeExecutionInput{
			ExecutionArn: aws.String(executionArn),
		})
		if err != nil {
			return nil, oops.Wrapf(err, "describe execution %s", executionArn)
		}
		if out.Status != types.ExecutionStatusRunning {
			return out, nil
		}

		if !o.clock.Now().Before(deadline) {
			return nil, oops.Errorf("execution %s still %s after %s", executionArn, out.Status, o.Timeout)
		}
		logrus.WithFields(logrus.Fields{"executionArn": executionArn, "status": out.Status}).Debug("execution running")

		select {
		case <-o.clock.After(poll.Duration()):
		case <-ctx.Done():
			return nil, oops.Wrapf(ctx.Err(), "waiting for execution %s", executionArn)
		}
	}
}

func findStateMachine(ctx context.Context, client SFNAPI, name string) (string, error) {
	paginator := sfn.NewListStateMachinesPaginator(client, &sfn.ListStateMachinesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", oops.Wrapf(err, "list state machines")
		}
		for _, sm := range page.StateMachines {
			if aws.ToString(sm.Name) == name {
				return aws.ToString(sm.StateMachineArn), nil
			}
		}
	}
	return "", oops.Errorf("state machine %s not found; deploy the stack first", name)
}
