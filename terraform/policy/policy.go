// Package policy models IAM policy documents.
package policy

import (
	"encoding/json"

	"github.com/samsarahq/go/oops"
)

const AWSPolicyVersion = "2012-10-17"

type AWSPolicy struct {
	Version   string               `json:"Version"`
	Statement []AWSPolicyStatement `json:"Statement"`
}

type AWSPolicyStatement struct {
	Sid       string                         `json:"Sid,omitempty"`
	Effect    string                         `json:"Effect"`
	Principal map[string]string              `json:"Principal,omitempty"`
	Action    []string                       `json:"Action"`
	Resource  []string                       `json:"Resource,omitempty"`
	Condition map[string]map[string][]string `json:"Condition,omitempty"`
}

type document AWSPolicy

// Document renders the policy as JSON.
func (p AWSPolicy) Document() (string, error) {
	raw, err := json.Marshal(document(p))
	if err != nil {
		return "", oops.Wrapf(err, "marshal policy")
	}
	return string(raw), nil
}

// MarshalJSON encodes the policy as a JSON string, which is what every
// Terraform argument taking a policy expects.
func (p AWSPolicy) MarshalJSON() ([]byte, error) {
	doc, err := p.Document()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// ServiceAssumeRolePolicy allows a single AWS service principal to assume a role.
func ServiceAssumeRolePolicy(service string) AWSPolicy {
	return AWSPolicy{
		Version: AWSPolicyVersion,
		Statement: []AWSPolicyStatement{
			{
				Principal: map[string]string{
					"Service": service,
				},
				Effect: "Allow",
				Action: []string{"sts:AssumeRole"},
			},
		},
	}
}

// ManagedPolicyArn returns the ARN of an AWS managed policy such as
// "service-role/AWSGlueServiceRole".
func ManagedPolicyArn(name string) string {
	return "arn:aws:iam::aws:policy/" + name
}
