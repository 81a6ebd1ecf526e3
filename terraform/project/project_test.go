package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koljamaier/aws-dwh/terraform/awsresource"
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

func TestMergeResourceGroups(t *testing.T) {
	a := &awsresource.SQSQueue{ResourceName: "a", Name: "a"}
	b := &awsresource.SQSQueue{ResourceName: "b", Name: "b"}
	topic := &awsresource.SNSTopic{ResourceName: "t", Name: "t"}

	merged := MergeResourceGroups(
		map[string][]tf.Resource{"queues": {a}},
		map[string][]tf.Resource{"queues": {b}, "topics": {topic}},
	)
	assert.Equal(t, []tf.Resource{a, b}, merged["queues"])
	assert.Equal(t, []tf.Resource{topic}, merged["topics"])
}

func TestWrite(t *testing.T) {
	p := &Project{
		Name:   "example",
		Class:  "example",
		Region: "us-west-2",
		ResourceGroups: map[string][]tf.Resource{
			"queue": {&awsresource.SQSQueue{ResourceName: "q", Name: "q", VisibilityTimeoutSeconds: 300}},
		},
		ExtraFiles: map[string]*ExtraFile{
			"artifacts/readme.txt": {Contents: []byte("hi")},
		},
	}
	p.ResourceGroups = MergeResourceGroups(p.ResourceGroups, map[string][]tf.Resource{
		"aws_provider": AWSProvider(p),
		"tf_backend":   TerraformBackend(p),
	})

	dir := t.TempDir()
	written, err := p.Write(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "example", "artifacts", "readme.txt"),
		filepath.Join(dir, "example", "aws_provider.tf.json"),
		filepath.Join(dir, "example", "queue.tf.json"),
		filepath.Join(dir, "example", "tf_backend.tf.json"),
	}, written)

	queue, err := os.ReadFile(filepath.Join(dir, "example", "queue.tf.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"resource": {"aws_sqs_queue": {"q": {"name": "q", "visibility_timeout_seconds": 300}}}}`, string(queue))

	backend, err := os.ReadFile(filepath.Join(dir, "example", "tf_backend.tf.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"terraform": {
			"required_version": ">= 1.3.0",
			"required_providers": {"aws": {"source": "hashicorp/aws", "version": "~> 5.0"}},
			"backend": {"local": {"path": "terraform.tfstate"}}
		},
		"locals": {"project_path": "example"}
	}`, string(backend))
}

func TestRenderRejectsDuplicatesAcrossGroups(t *testing.T) {
	p := &Project{
		Name: "dup",
		ResourceGroups: map[string][]tf.Resource{
			"one": {&awsresource.SQSQueue{ResourceName: "q", Name: "q"}},
			"two": {&awsresource.SQSQueue{ResourceName: "q", Name: "q"}},
		},
	}
	_, err := p.Render()
	require.Error(t, err)
}
