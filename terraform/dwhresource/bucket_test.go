package dwhresource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koljamaier/aws-dwh/terraform/tf"
)

func TestBucketResources(t *testing.T) {
	b := Bucket{Name: "emr-logs-udacity-final-project", Region: "us-west-2", PreventDestroy: true}

	out, err := tf.Marshal(b.Resources())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"resource": {
			"aws_s3_bucket": {
				"emr_logs_udacity_final_project": {
					"bucket": "emr-logs-udacity-final-project",
					"tags": {"dwh:service": "s3-emr_logs_udacity_final_project"},
					"lifecycle": {"prevent_destroy": true}
				}
			},
			"aws_s3_bucket_public_access_block": {
				"emr_logs_udacity_final_project": {
					"bucket": "${aws_s3_bucket.emr_logs_udacity_final_project.id}",
					"block_public_acls": true,
					"ignore_public_acls": true,
					"block_public_policy": true,
					"restrict_public_buckets": true
				}
			},
			"aws_s3_bucket_server_side_encryption_configuration": {
				"emr_logs_udacity_final_project": {
					"bucket": "${aws_s3_bucket.emr_logs_udacity_final_project.id}",
					"rule": [{"apply_server_side_encryption_by_default": [{"sse_algorithm": "AES256"}]}]
				}
			}
		}
	}`, string(out))
}
