package dwhprojects

import (
	"fmt"

	"github.com/koljamaier/aws-dwh/config/stackconfig"
	"github.com/koljamaier/aws-dwh/terraform/awsresource"
	"github.com/koljamaier/aws-dwh/terraform/dwhresource"
	"github.com/koljamaier/aws-dwh/terraform/policy"
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

// stepFunctionRole lets the state machine hand the EMR roles to the
// cluster and invoke the functions. The granular variant replaces the
// broad managed policies with statements scoped to what the pipeline calls.
func stepFunctionRole(cfg stackconfig.StackConfig) (tf.ResourceId, []tf.Resource) {
	statements := []policy.AWSPolicyStatement{
		{
			Sid:      "PassRole",
			Effect:   "Allow",
			Action:   []string{"iam:PassRole"},
			Resource: []string{"*"},
		},
		{
			Sid:      "InvokeLambda",
			Effect:   "Allow",
			Action:   []string{"lambda:InvokeFunction"},
			Resource: []string{fmt.Sprintf("arn:aws:lambda:%s:*", cfg.Region)},
		},
	}

	if !cfg.Pipeline.GranularPolicy {
		return dwhresource.StepFunctionRole(cfg.StateMachineName(), cfg.Region, []string{
			policy.ManagedPolicyArn("AmazonElasticMapReduceFullAccess"),
			policy.ManagedPolicyArn("AWSStepFunctionsFullAccess"),
		}, statements)
	}

	account := awsresource.CallerIdentity{}
	roleId, resources := dwhresource.StepFunctionRole(cfg.StateMachineName(), cfg.Region, nil,
		append(statements, granularStatements(cfg.Region, account.ResourceId().ReferenceAttr("account_id"))...))
	return roleId, append(resources, account)
}

func granularStatements(region string, account string) []policy.AWSPolicyStatement {
	return []policy.AWSPolicyStatement{
		{
			Sid:    "EMRClusterLifecycle",
			Effect: "Allow",
			Action: []string{
				"elasticmapreduce:RunJobFlow",
				"elasticmapreduce:DescribeCluster",
				"elasticmapreduce:TerminateJobFlows",
			},
			Resource: []string{"*"},
		},
		{
			Sid:    "EMRClusterSteps",
			Effect: "Allow",
			Action: []string{
				"elasticmapreduce:AddJobFlowSteps",
				"elasticmapreduce:DescribeStep",
				"elasticmapreduce:CancelSteps",
				"elasticmapreduce:SetTerminationProtection",
				"elasticmapreduce:ModifyInstanceFleet",
				"elasticmapreduce:ListInstanceFleets",
				"elasticmapreduce:ModifyInstanceGroups",
				"elasticmapreduce:ListInstanceGroups",
			},
			Resource: []string{"arn:aws:elasticmapreduce:*:*:cluster/*"},
		},
		{
			Sid:    "EMRCleanupRole",
			Effect: "Allow",
			Action: []string{
				"iam:CreateServiceLinkedRole",
				"iam:PutRolePolicy",
			},
			Resource: []string{"arn:aws:iam::*:role/aws-service-role/elasticmapreduce.amazonaws.com*/AWSServiceRoleForEMRCleanup*"},
			Condition: map[string]map[string][]string{
				"StringLike": {
					"iam:AWSServiceName": {"elasticmapreduce.amazonaws.com", "elasticmapreduce.amazonaws.com.cn"},
				},
			},
		},
		{
			Sid:    "Executions",
			Effect: "Allow",
			Action: []string{
				"states:DescribeExecution",
				"states:StopExecution",
			},
			Resource: []string{"*"},
		},
		{
			Sid:      "StartExecution",
			Effect:   "Allow",
			Action:   []string{"states:StartExecution"},
			Resource: []string{fmt.Sprintf("arn:aws:states:%s:%s:stateMachine:*", region, account)},
		},
		{
			Sid:    "SyncIntegrationEvents",
			Effect: "Allow",
			Action: []string{
				"events:PutTargets",
				"events:PutRule",
				"events:DescribeRule",
			},
			Resource: []string{fmt.Sprintf("arn:aws:events:%s:%s:rule/StepFunctionsGetEventsForStepFunctionsExecutionRule", region, account)},
		},
	}
}
