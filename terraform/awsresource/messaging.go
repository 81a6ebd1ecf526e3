package awsresource

import (
	"github.com/koljamaier/aws-dwh/terraform/policy"
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

type SQSQueue struct {
	tf.BaseResource
	ResourceName             string            `json:"-"`
	Name                     string            `json:"name"`
	VisibilityTimeoutSeconds int               `json:"visibility_timeout_seconds,omitempty"`
	MessageRetentionSeconds  int               `json:"message_retention_seconds,omitempty"`
	Tags                     map[string]string `json:"tags,omitempty"`
}

func (r *SQSQueue) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_sqs_queue", Name: r.ResourceName}
}

type SQSQueuePolicy struct {
	tf.BaseResource
	ResourceName string           `json:"-"`
	QueueUrl     string           `json:"queue_url"`
	Policy       policy.AWSPolicy `json:"policy"`
}

func (r *SQSQueuePolicy) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_sqs_queue_policy", Name: r.ResourceName}
}

type SNSTopic struct {
	tf.BaseResource
	ResourceName string            `json:"-"`
	Name         string            `json:"name"`
	Tags         map[string]string `json:"tags,omitempty"`
}

func (r *SNSTopic) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_sns_topic", Name: r.ResourceName}
}

type SNSTopicSubscription struct {
	tf.BaseResource
	ResourceName string `json:"-"`
	TopicArn     string `json:"topic_arn"`
	Protocol     string `json:"protocol"`
	Endpoint     string `json:"endpoint"`
}

func (r *SNSTopicSubscription) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_sns_topic_subscription", Name: r.ResourceName}
}
