package tf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koljamaier/aws-dwh/terraform/tf"
)

type fakeQueue struct {
	tf.BaseResource
	ResourceName string `json:"-"`
	Name         string `json:"name"`
}

func (q *fakeQueue) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_sqs_queue", Name: q.ResourceName}
}

type fakeIdentity struct{}

func (fakeIdentity) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_caller_identity", Name: "current", Data: true}
}

func TestReferences(t *testing.T) {
	id := tf.ResourceId{Type: "aws_iam_role", Name: "sfn"}
	assert.Equal(t, "${aws_iam_role.sfn.id}", id.Reference())
	assert.Equal(t, "${aws_iam_role.sfn.arn}", id.ReferenceAttr("arn"))

	data := fakeIdentity{}.ResourceId()
	assert.Equal(t, "${data.aws_caller_identity.current.account_id}", data.ReferenceAttr("account_id"))
	assert.Equal(t, "${local.project_path}", tf.LocalId("project_path").Reference())
}

func TestMarshal(t *testing.T) {
	protected := &fakeQueue{ResourceName: "b", Name: "queue-b"}
	protected.Lifecycle.PreventDestroy = true

	out, err := tf.Marshal([]tf.Resource{
		&fakeQueue{ResourceName: "a", Name: "queue-a"},
		protected,
		fakeIdentity{},
		tf.Locals{"project_path": "dwh"},
		&tf.Provider{Name: "aws", Config: map[string]interface{}{"region": "us-west-2"}},
	})
	require.NoError(t, err)
	require.JSONEq(t, `{
		"resource": {
			"aws_sqs_queue": {
				"a": {"name": "queue-a"},
				"b": {"name": "queue-b", "lifecycle": {"prevent_destroy": true}}
			}
		},
		"data": {"aws_caller_identity": {"current": {}}},
		"locals": {"project_path": "dwh"},
		"provider": {"aws": {"region": "us-west-2"}}
	}`, string(out))
}

func TestMarshalDuplicate(t *testing.T) {
	_, err := tf.Marshal([]tf.Resource{
		&fakeQueue{ResourceName: "a", Name: "one"},
		&fakeQueue{ResourceName: "a", Name: "two"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate resource aws_sqs_queue.a")
}

func TestSortedTypes(t *testing.T) {
	types := tf.SortedTypes([]tf.Resource{
		&fakeQueue{ResourceName: "a"},
		fakeIdentity{},
		&fakeQueue{ResourceName: "b"},
	})
	assert.Equal(t, []string{"aws_caller_identity", "aws_sqs_queue"}, types)
}
