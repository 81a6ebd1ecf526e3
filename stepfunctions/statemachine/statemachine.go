// Package statemachine models Amazon States Language definitions.
package statemachine

import (
	"encoding/json"
	"fmt"

	"github.com/samsarahq/go/oops"
)

type StateType string

const (
	TaskStateType    StateType = "Task"
	PassStateType    StateType = "Pass"
	SucceedStateType StateType = "Succeed"
	FailStateType    StateType = "Fail"
)

type State interface {
	Name() string
	Type() StateType

	// Reference is what a preceding state stores in its Next field.
	Reference() *string

	// NextState is the name of the following state, nil for terminal states.
	NextState() *string
}

// BaseState carries the fields shared by every state type.
type BaseState struct {
	StateName  string    `json:"-"`
	StateType  StateType `json:"Type"`
	Comment    string    `json:"Comment,omitempty"`
	Next       *string   `json:"Next,omitempty"`
	End        bool      `json:"End,omitempty"`
	InputPath  *JSONPath `json:"InputPath,omitempty"`
	OutputPath *JSONPath `json:"OutputPath,omitempty"`
}

func (s *BaseState) Name() string {
	return s.StateName
}

func (s *BaseState) Type() StateType {
	return s.StateType
}

func (s *BaseState) Reference() *string {
	name := s.StateName
	return &name
}

func (s *BaseState) NextState() *string {
	return s.Next
}

// chain sets Next, or End when next is nil.
func (s *BaseState) chain(next *string) {
	if next == nil {
		s.End = true
		return
	}
	s.Next = next
}

type TaskState struct {
	BaseState
	Resource       string                 `json:"Resource"`
	Parameters     map[string]interface{} `json:"Parameters,omitempty"`
	ResultPath     *JSONPath              `json:"ResultPath,omitempty"`
	TimeoutSeconds *uint32                `json:"TimeoutSeconds,omitempty"`
}

type PassState struct {
	BaseState
	Result     interface{} `json:"Result,omitempty"`
	ResultPath *JSONPath   `json:"ResultPath,omitempty"`
}

type SucceedState struct {
	BaseState
}

type FailState struct {
	BaseState
	Error string `json:"Error,omitempty"`
	Cause string `json:"Cause,omitempty"`
}

type StepFunctionDefinition struct {
	Name           string
	Comment        string
	StartAt        State
	States         []State
	TimeoutSeconds *uint32
}

// Lookup finds a state by name.
func (d *StepFunctionDefinition) Lookup(name string) (State, bool) {
	for _, s := range d.States {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

func (d StepFunctionDefinition) MarshalJSON() ([]byte, error) {
	if d.StartAt == nil {
		return nil, oops.Errorf("definition %s has no start state", d.Name)
	}
	states := make(map[string]State, len(d.States))
	for _, s := range d.States {
		if _, ok := states[s.Name()]; ok {
			return nil, oops.Errorf("definition %s has duplicate state %s", d.Name, s.Name())
		}
		states[s.Name()] = s
	}
	if _, ok := states[d.StartAt.Name()]; !ok {
		return nil, oops.Errorf("definition %s starts at %s which is not one of its states", d.Name, d.StartAt.Name())
	}

	return json.Marshal(struct {
		Comment        string           `json:"Comment,omitempty"`
		StartAt        string           `json:"StartAt"`
		States         map[string]State `json:"States"`
		TimeoutSeconds *uint32          `json:"TimeoutSeconds,omitempty"`
	}{
		Comment:        d.Comment,
		StartAt:        d.StartAt.Name(),
		States:         states,
		TimeoutSeconds: d.TimeoutSeconds,
	})
}

// MarshalIndentJSON renders the definition as indented ASL.
func (d *StepFunctionDefinition) MarshalIndentJSON() ([]byte, error) {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, oops.Wrapf(err, "marshal %s", d.Name)
	}
	return raw, nil
}

func (d *StepFunctionDefinition) String() string {
	raw, err := d.MarshalIndentJSON()
	if err != nil {
		return fmt.Sprintf("<invalid definition %s: %v>", d.Name, err)
	}
	return string(raw)
}
