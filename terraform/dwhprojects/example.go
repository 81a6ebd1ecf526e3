package dwhprojects

import (
	"github.com/koljamaier/aws-dwh/config/stackconfig"
	"github.com/koljamaier/aws-dwh/terraform/awsresource"
	"github.com/koljamaier/aws-dwh/terraform/policy"
	"github.com/koljamaier/aws-dwh/terraform/project"
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

// ExampleProject is a minimal queue fed by a topic, used to check that a
// freshly configured account can apply generated Terraform.
func ExampleProject(cfg stackconfig.StackConfig) *project.Project {
	queue := &awsresource.SQSQueue{
		ResourceName:             "example",
		Name:                     cfg.Stack + "-example",
		VisibilityTimeoutSeconds: 300,
	}
	topic := &awsresource.SNSTopic{
		ResourceName: "example",
		Name:         cfg.Stack + "-example",
	}
	subscription := &awsresource.SNSTopicSubscription{
		ResourceName: "example",
		TopicArn:     topic.ResourceId().ReferenceAttr("arn"),
		Protocol:     "sqs",
		Endpoint:     queue.ResourceId().ReferenceAttr("arn"),
	}
	// The topic can only deliver once the queue allows it to send.
	queuePolicy := &awsresource.SQSQueuePolicy{
		ResourceName: "example",
		QueueUrl:     queue.ResourceId().ReferenceAttr("url"),
		Policy: policy.AWSPolicy{
			Version: policy.AWSPolicyVersion,
			Statement: []policy.AWSPolicyStatement{
				{
					Effect:    "Allow",
					Principal: map[string]string{"Service": "sns.amazonaws.com"},
					Action:    []string{"sqs:SendMessage"},
					Resource:  []string{queue.ResourceId().ReferenceAttr("arn")},
					Condition: map[string]map[string][]string{
						"ArnEquals": {"aws:SourceArn": {topic.ResourceId().ReferenceAttr("arn")}},
					},
				},
			},
		},
	}

	p := &project.Project{
		Name:   ExampleProjectName,
		Class:  "example",
		Region: cfg.Region,
	}
	p.ResourceGroups = project.MergeResourceGroups(
		map[string][]tf.Resource{
			"messaging": {queue, topic, subscription, queuePolicy},
		},
		map[string][]tf.Resource{
			"aws_provider": project.AWSProvider(p),
			"tf_backend":   project.TerraformBackend(p),
		},
	)
	return p
}
