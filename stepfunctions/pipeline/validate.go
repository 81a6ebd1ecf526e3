package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/koljamaier/aws-dwh/stepfunctions/statemachine"
)

// shape is what the checker knows about a JSON value: the keys of an
// object and their shapes. A nil shape is a value whose structure is not
// known statically, so any path into it is accepted.
type shape map[string]shape

func (s shape) copy() shape {
	if s == nil {
		return nil
	}
	c := make(shape, len(s))
	for k, v := range s {
		c[k] = v.copy()
	}
	return c
}

func shapeOf(v interface{}) shape {
	m, ok := v.(map[string]interface{})
	if !ok {
		return shape{}
	}
	s := make(shape, len(m))
	for k, child := range m {
		s[k] = shapeOf(child)
	}
	return s
}

func segments(path string) ([]string, bool) {
	if path == "$" {
		return nil, true
	}
	if !strings.HasPrefix(path, "$.") {
		return nil, false
	}
	return strings.Split(strings.TrimPrefix(path, "$."), "."), true
}

func (s shape) resolve(path string) (shape, bool) {
	segs, ok := segments(path)
	if !ok {
		return nil, false
	}
	cur := s
	for _, seg := range segs {
		if cur == nil {
			return nil, true
		}
		next, ok := cur[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func (s shape) set(path string, value shape) (shape, bool) {
	segs, ok := segments(path)
	if !ok {
		return nil, false
	}
	if len(segs) == 0 {
		return value, true
	}
	root := s.copy()
	if root == nil {
		return nil, true
	}
	cur := root
	for i, seg := range segs {
		if i == len(segs)-1 {
			cur[seg] = value
			break
		}
		child, ok := cur[seg]
		if !ok {
			child = shape{}
			cur[seg] = child
		}
		if child == nil {
			return root, true
		}
		cur = child
	}
	return root, true
}

// resultShape is what a task's integration returns.
func resultShape(task *statemachine.TaskState) shape {
	switch task.Resource {
	case statemachine.ServiceResource("elasticmapreduce", statemachine.EMRCreateClusterAction, statemachine.IntegrationSync):
		return shape{"ClusterId": shape{}, "Cluster": nil}
	case statemachine.ServiceResource("elasticmapreduce", statemachine.EMRAddStepAction, statemachine.IntegrationSync):
		return shape{"StepId": shape{}, "Step": nil}
	case statemachine.ServiceResource("elasticmapreduce", statemachine.EMRTerminateClusterAction, statemachine.IntegrationSync):
		return shape{}
	}
	// Function results and other integrations are opaque.
	return nil
}

// Validate checks that def is a single linear chain and that every path a
// state reads was produced by an earlier state or is part of input.
// All problems are reported together.
func Validate(def *statemachine.StepFunctionDefinition, input map[string]interface{}) error {
	var errs *multierror.Error
	fail := func(format string, args ...interface{}) {
		errs = multierror.Append(errs, fmt.Errorf(format, args...))
	}

	if def.StartAt == nil {
		fail("%s: no start state", def.Name)
		return errs
	}

	byName := make(map[string]statemachine.State, len(def.States))
	for _, s := range def.States {
		if _, ok := byName[s.Name()]; ok {
			fail("%s: duplicate state %s", def.Name, s.Name())
			continue
		}
		byName[s.Name()] = s
	}

	current := shapeOf(input)
	if input == nil {
		current = shape{}
	}

	visited := make(map[string]bool)
	var ends []string
	state, ok := byName[def.StartAt.Name()]
	if !ok {
		fail("%s: start state %s is not defined", def.Name, def.StartAt.Name())
	}
	for ok {
		name := state.Name()
		if visited[name] {
			fail("%s: cycle through state %s", def.Name, name)
			break
		}
		visited[name] = true

		current = checkState(def.Name, state, current, fail)

		next := state.NextState()
		if next == nil {
			ends = append(ends, name)
			break
		}
		state, ok = byName[*next]
		if !ok {
			fail("%s: state %s points at undefined state %s", def.Name, name, *next)
		}
	}

	if len(ends) != 1 && len(errs.WrappedErrors()) == 0 {
		fail("%s: expected exactly one terminal state, found %d", def.Name, len(ends))
	}

	var unreachable []string
	for name := range byName {
		if !visited[name] {
			unreachable = append(unreachable, name)
		}
	}
	sort.Strings(unreachable)
	for _, name := range unreachable {
		fail("%s: state %s is not reachable from %s", def.Name, name, def.StartAt.Name())
	}

	return errs.ErrorOrNil()
}

// checkState validates one state against the shape of its input and
// returns the shape of its output.
func checkState(defName string, state statemachine.State, in shape, fail func(string, ...interface{})) shape {
	name := state.Name()

	var base *statemachine.BaseState
	var resultPath *statemachine.JSONPath
	var result shape
	var params map[string]interface{}
	hasResult := false

	switch s := state.(type) {
	case *statemachine.TaskState:
		base, resultPath, params = &s.BaseState, s.ResultPath, s.Parameters
		result, hasResult = resultShape(s), true
	case *statemachine.PassState:
		base, resultPath = &s.BaseState, s.ResultPath
		result, hasResult = shapeOf(s.Result), s.Result != nil
	case *statemachine.SucceedState:
		base = &s.BaseState
	case *statemachine.FailState:
		return shape{}
	default:
		fail("%s: state %s has unsupported type %s", defName, name, state.Type())
		return shape{}
	}

	effective := in
	if base.InputPath != nil && !base.InputPath.IsNull() {
		resolved, ok := in.resolve(base.InputPath.String())
		if !ok {
			fail("%s: state %s InputPath %s does not resolve against its input", defName, name, base.InputPath.String())
		}
		effective = resolved
	}
	checkParameters(defName, name, params, effective, fail)

	out := in
	if hasResult {
		switch {
		case resultPath.IsNull():
			out = in
		default:
			set, ok := in.set(resultPath.String(), result)
			if !ok {
				fail("%s: state %s has invalid ResultPath %s", defName, name, resultPath.String())
			}
			out = set
		}
	}

	if base.OutputPath != nil && !base.OutputPath.IsNull() {
		resolved, ok := out.resolve(base.OutputPath.String())
		if !ok {
			fail("%s: state %s OutputPath %s does not resolve against its result", defName, name, base.OutputPath.String())
		}
		out = resolved
	}
	return out
}

func checkParameters(defName, stateName string, params map[string]interface{}, in shape, fail func(string, ...interface{})) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := params[key]
		if nested, ok := value.(map[string]interface{}); ok {
			checkParameters(defName, stateName, nested, in, fail)
			continue
		}
		if !statemachine.IsReferenceKey(key) {
			continue
		}
		path, ok := value.(string)
		if !ok {
			fail("%s: state %s parameter %s must be a path string", defName, stateName, key)
			continue
		}
		if strings.HasPrefix(path, "$$.") {
			continue
		}
		if _, ok := in.resolve(path); !ok {
			fail("%s: state %s parameter %s reads %s, which no earlier state produced", defName, stateName, key, path)
		}
	}
}
