// Package awsresource holds typed Terraform resources for the AWS provider.
package awsresource

import (
	"github.com/koljamaier/aws-dwh/terraform/policy"
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

type IAMRole struct {
	tf.BaseResource
	ResourceName     string            `json:"-"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	AssumeRolePolicy policy.AWSPolicy  `json:"assume_role_policy"`
	Tags             map[string]string `json:"tags,omitempty"`
}

func (r *IAMRole) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_iam_role", Name: r.ResourceName}
}

type IAMRolePolicy struct {
	tf.BaseResource
	// Role is the role name; an aws_iam_role's id attribute is its name.
	Role   string           `json:"role"`
	Name   string           `json:"name"`
	Policy policy.AWSPolicy `json:"policy"`
}

func (r *IAMRolePolicy) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_iam_role_policy", Name: r.Name}
}

type IAMRolePolicyAttachment struct {
	tf.BaseResource
	Name      string `json:"-"`
	Role      string `json:"role"`
	PolicyARN string `json:"policy_arn"`
}

func (r *IAMRolePolicyAttachment) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_iam_role_policy_attachment", Name: r.Name}
}

type IAMInstanceProfile struct {
	tf.BaseResource
	ResourceName string `json:"-"`
	Name         string `json:"name"`
	Role         string `json:"role"`
}

func (r *IAMInstanceProfile) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_iam_instance_profile", Name: r.ResourceName}
}

// CallerIdentity is the aws_caller_identity data source.
type CallerIdentity struct{}

func (CallerIdentity) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_caller_identity", Name: "current", Data: true}
}
