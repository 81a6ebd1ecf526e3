package dwhresource

import (
	"fmt"
	"sort"

	"github.com/koljamaier/aws-dwh/terraform/awsresource"
	"github.com/koljamaier/aws-dwh/terraform/policy"
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

const maxRoleNameLength = 64

type roleSpec struct {
	prefix      string
	name        string
	service     string
	description string
	policyArns  []string
	statements  []policy.AWSPolicyStatement
}

func (s roleSpec) build() (*awsresource.IAMRole, []tf.Resource) {
	var resources []tf.Resource
	roleName := s.prefix + "-" + s.name
	role := &awsresource.IAMRole{
		ResourceName:     resourceName(roleName),
		Name:             hashTruncate(roleName, maxRoleNameLength, 8),
		Description:      s.description,
		AssumeRolePolicy: policy.ServiceAssumeRolePolicy(s.service),
		Tags: map[string]string{
			"dwh:service": fmt.Sprintf("%s-role", roleName),
		},
	}
	resources = append(resources, role)

	if len(s.statements) > 0 {
		resources = append(resources, &awsresource.IAMRolePolicy{
			Role: role.ResourceId().Reference(),
			Name: resourceName(s.prefix + "-custom-" + s.name),
			Policy: policy.AWSPolicy{
				Version:   policy.AWSPolicyVersion,
				Statement: s.statements,
			},
		})
	}

	policyArns := append([]string(nil), s.policyArns...)
	sort.Strings(policyArns)
	for i, policyArn := range policyArns {
		resources = append(resources, &awsresource.IAMRolePolicyAttachment{
			Name:      resourceName(fmt.Sprintf("%s-%02d-%s", s.prefix, i, s.name)),
			Role:      role.ResourceId().Reference(),
			PolicyARN: policyArn,
		})
	}
	return role, resources
}

// StepFunctionRole is assumed by the state machine in region.
func StepFunctionRole(stepFunctionName string, region string, policyArns []string, policyStatements []policy.AWSPolicyStatement) (tf.ResourceId, []tf.Resource) {
	role, resources := roleSpec{
		prefix:      "sfn",
		name:        stepFunctionName,
		service:     fmt.Sprintf("states.%s.amazonaws.com", region),
		description: fmt.Sprintf("Role assumed when running %s step function", stepFunctionName),
		policyArns:  policyArns,
		statements:  policyStatements,
	}.build()
	return role.ResourceId(), resources
}

// EMRInstanceRole is assumed by the cluster's EC2 nodes through the
// returned instance profile.
func EMRInstanceRole(clusterName string) (*awsresource.IAMInstanceProfile, []tf.Resource) {
	role, resources := roleSpec{
		prefix:      "emr-ec2",
		name:        clusterName,
		service:     "ec2.amazonaws.com",
		description: fmt.Sprintf("Role assumed by the nodes of the %s cluster", clusterName),
		policyArns:  []string{policy.ManagedPolicyArn("service-role/AmazonElasticMapReduceforEC2Role")},
	}.build()
	profile := &awsresource.IAMInstanceProfile{
		ResourceName: role.ResourceName,
		Name:         role.Name,
		Role:         role.ResourceId().Reference(),
	}
	return profile, append(resources, profile)
}

// EMRServiceRole is assumed by EMR itself to provision the cluster.
func EMRServiceRole(clusterName string) (*awsresource.IAMRole, []tf.Resource) {
	return roleSpec{
		prefix:      "emr-service",
		name:        clusterName,
		service:     "elasticmapreduce.amazonaws.com",
		description: fmt.Sprintf("Role assumed by EMR to manage the %s cluster", clusterName),
		policyArns:  []string{policy.ManagedPolicyArn("service-role/AmazonElasticMapReduceRole")},
	}.build()
}

func GlueCrawlerRole(crawlerName string) (tf.ResourceId, []tf.Resource) {
	role, resources := roleSpec{
		prefix:      "glue",
		name:        crawlerName,
		service:     "glue.amazonaws.com",
		description: fmt.Sprintf("Role assumed by the %s crawler", crawlerName),
		policyArns: []string{
			policy.ManagedPolicyArn("service-role/AWSGlueServiceRole"),
			policy.ManagedPolicyArn("AmazonS3FullAccess"),
			policy.ManagedPolicyArn("CloudWatchLogsFullAccess"),
			policy.ManagedPolicyArn("AmazonSSMReadOnlyAccess"),
		},
	}.build()
	return role.ResourceId(), resources
}

// LambdaRole always carries basic execution so the function can log.
func LambdaRole(functionName string, policyArns []string, policyStatements []policy.AWSPolicyStatement) (tf.ResourceId, []tf.Resource) {
	role, resources := roleSpec{
		prefix:      "lambda",
		name:        functionName,
		service:     "lambda.amazonaws.com",
		description: fmt.Sprintf("Role assumed by the %s function", functionName),
		policyArns:  append([]string{policy.ManagedPolicyArn("service-role/AWSLambdaBasicExecutionRole")}, policyArns...),
		statements:  policyStatements,
	}.build()
	return role.ResourceId(), resources
}
