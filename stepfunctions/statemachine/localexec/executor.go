// Package localexec runs a state machine definition in process, applying
// the same input and output processing the Step Functions engine does.
package localexec

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/koljamaier/aws-dwh/stepfunctions/statemachine"
)

// Integration performs the work behind a task resource. input is the
// effective input after InputPath and Parameters.
type Integration interface {
	Invoke(ctx context.Context, task *statemachine.TaskState, input []byte) ([]byte, error)
}

type IntegrationFunc func(ctx context.Context, task *statemachine.TaskState, input []byte) ([]byte, error)

func (f IntegrationFunc) Invoke(ctx context.Context, task *statemachine.TaskState, input []byte) ([]byte, error) {
	return f(ctx, task, input)
}

// acceptedResult is what a fire-and-forget task hands to the next state.
var acceptedResult = []byte(`{"StatusCode":202}`)

type StepRecord struct {
	State       string
	Type        statemachine.StateType
	Resource    string          `json:",omitempty"`
	Synchronous bool            `json:",omitempty"`
	Input       json.RawMessage `json:",omitempty"`
	Output      json.RawMessage `json:",omitempty"`
	Duration    time.Duration
}

type Execution struct {
	Name   string
	Output json.RawMessage
	Trace  []StepRecord
}

// StateError is a failure attributed to a single state.
type StateError struct {
	State string
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state %s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

type Executor struct {
	// Integrations are keyed by resource prefix; the longest match wins.
	Integrations map[string]Integration
	Log          logrus.FieldLogger
}

func (e *Executor) logger() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}

func (e *Executor) integration(resource string) (Integration, bool) {
	prefixes := make([]string, 0, len(e.Integrations))
	for p := range e.Integrations {
		if strings.HasPrefix(resource, p) {
			prefixes = append(prefixes, p)
		}
	}
	if len(prefixes) == 0 {
		return nil, false
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	return e.Integrations[prefixes[0]], true
}

// Run executes def from its start state. The first failing state stops
// the run. Fire-and-forget tasks are not awaited before the next state,
// but Run waits for them before returning and reports their failure.
func (e *Executor) Run(ctx context.Context, def *statemachine.StepFunctionDefinition, input []byte) (*Execution, error) {
	if def.StartAt == nil {
		return nil, oops.Errorf("definition %s has no start state", def.Name)
	}
	if len(input) == 0 {
		input = []byte("{}")
	}
	if !json.Valid(input) {
		return nil, oops.Errorf("execution input is not valid JSON")
	}

	exec := &Execution{Name: uuid.NewString()}
	log := e.logger().WithFields(logrus.Fields{"stateMachine": def.Name, "execution": exec.Name})

	var detached errgroup.Group
	finish := func(runErr error) (*Execution, error) {
		if err := detached.Wait(); err != nil && runErr == nil {
			return exec, oops.Wrapf(err, "detached task failed after the chain completed")
		}
		return exec, runErr
	}

	current := input
	state, ok := def.Lookup(def.StartAt.Name())
	if !ok {
		return nil, oops.Errorf("definition %s starts at undefined state %s", def.Name, def.StartAt.Name())
	}
	visited := make(map[string]bool, len(def.States))

	for {
		if err := ctx.Err(); err != nil {
			return finish(&StateError{State: state.Name(), Err: err})
		}
		if visited[state.Name()] {
			return finish(&StateError{State: state.Name(), Err: oops.Errorf("state visited twice")})
		}
		visited[state.Name()] = true

		started := time.Now()
		record := StepRecord{State: state.Name(), Type: state.Type(), Input: json.RawMessage(current)}
		contextObject, err := json.Marshal(map[string]interface{}{
			"Execution":    map[string]interface{}{"Name": exec.Name, "Input": json.RawMessage(input)},
			"StateMachine": map[string]interface{}{"Name": def.Name},
			"State":        map[string]interface{}{"Name": state.Name()},
		})
		if err != nil {
			return finish(oops.Wrapf(err, "marshal context object"))
		}

		var out []byte
		switch s := state.(type) {
		case *statemachine.TaskState:
			record.Resource = s.Resource
			record.Synchronous = statemachine.IsSynchronous(s)
			out, err = e.runTask(ctx, &detached, log, s, current, contextObject)
		case *statemachine.PassState:
			out, err = runPass(s, current)
		case *statemachine.SucceedState:
			out, err = runSucceed(s, current)
		case *statemachine.FailState:
			err = oops.Errorf("%s: %s", s.Error, s.Cause)
		default:
			err = oops.Errorf("unsupported state type %s", state.Type())
		}
		record.Duration = time.Since(started)
		if err != nil {
			exec.Trace = append(exec.Trace, record)
			log.WithField("state", state.Name()).WithError(err).Error("state failed")
			return finish(&StateError{State: state.Name(), Err: err})
		}
		record.Output = json.RawMessage(out)
		exec.Trace = append(exec.Trace, record)
		log.WithField("state", state.Name()).Debug("state completed")
		current = out

		next := state.NextState()
		if next == nil {
			exec.Output = json.RawMessage(current)
			return finish(nil)
		}
		nextState, ok := def.Lookup(*next)
		if !ok {
			return finish(&StateError{State: state.Name(), Err: oops.Errorf("next state %s is not defined", *next)})
		}
		state = nextState
	}
}

func (e *Executor) runTask(ctx context.Context, detached *errgroup.Group, log logrus.FieldLogger, task *statemachine.TaskState, rawInput []byte, contextObject []byte) ([]byte, error) {
	effective, err := applyInputPath(rawInput, task.InputPath)
	if err != nil {
		return nil, oops.Wrapf(err, "InputPath")
	}
	effective, err = resolveParameters(task.Parameters, effective, contextObject)
	if err != nil {
		return nil, oops.Wrapf(err, "Parameters")
	}

	integration, ok := e.integration(task.Resource)
	if !ok {
		return nil, oops.Errorf("no integration for resource %s", task.Resource)
	}

	var result []byte
	if statemachine.IsSynchronous(task) {
		if task.TimeoutSeconds != nil {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(*task.TimeoutSeconds)*time.Second)
			defer cancel()
		}
		result, err = integration.Invoke(ctx, task, effective)
		if err != nil {
			return nil, err
		}
	} else {
		name := task.Name()
		detached.Go(func() error {
			if _, err := integration.Invoke(context.Background(), task, effective); err != nil {
				log.WithField("state", name).WithError(err).Warn("detached task failed")
				return &StateError{State: name, Err: err}
			}
			return nil
		})
		result = acceptedResult
	}
	if len(result) == 0 {
		result = []byte("null")
	}
	if !json.Valid(result) {
		return nil, oops.Errorf("integration for %s returned invalid JSON", task.Resource)
	}

	out, err := applyResultPath(rawInput, result, task.ResultPath)
	if err != nil {
		return nil, err
	}
	return applyOutputPath(out, task.OutputPath)
}

func runPass(s *statemachine.PassState, rawInput []byte) ([]byte, error) {
	result, err := applyInputPath(rawInput, s.InputPath)
	if err != nil {
		return nil, oops.Wrapf(err, "InputPath")
	}
	if s.Result != nil {
		if result, err = json.Marshal(s.Result); err != nil {
			return nil, oops.Wrapf(err, "marshal Result")
		}
	}
	out, err := applyResultPath(rawInput, result, s.ResultPath)
	if err != nil {
		return nil, err
	}
	return applyOutputPath(out, s.OutputPath)
}

func runSucceed(s *statemachine.SucceedState, rawInput []byte) ([]byte, error) {
	out, err := applyInputPath(rawInput, s.InputPath)
	if err != nil {
		return nil, oops.Wrapf(err, "InputPath")
	}
	return applyOutputPath(out, s.OutputPath)
}
