package awsresource

import (
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

type SFNStateMachine struct {
	tf.BaseResource
	ResourceName string            `json:"-"`
	Name         string            `json:"name"`
	RoleArn      string            `json:"role_arn"`
	Definition   string            `json:"definition"`
	Type         string            `json:"type,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
}

func (r *SFNStateMachine) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_sfn_state_machine", Name: r.ResourceName}
}
