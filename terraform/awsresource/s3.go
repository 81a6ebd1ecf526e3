package awsresource

import (
	"encoding/json"

	"github.com/koljamaier/aws-dwh/terraform/tf"
)

const (
	S3SSEAlgorithmAES256 = "AES256"
	S3SSEAlgorithmKMS    = "aws:kms"
)

type S3Bucket struct {
	tf.BaseResource
	Name         string            `json:"-"`
	Bucket       string            `json:"bucket"`
	ForceDestroy bool              `json:"force_destroy,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
}

func (r *S3Bucket) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_s3_bucket", Name: r.Name}
}

type S3BucketPublicAccessBlock struct {
	tf.BaseResource
	Bucket                tf.ResourceId `json:"-"`
	BlockPublicAcls       bool          `json:"block_public_acls"`
	IgnorePublicAcls      bool          `json:"ignore_public_acls"`
	BlockPublicPolicy     bool          `json:"block_public_policy"`
	RestrictPublicBuckets bool          `json:"restrict_public_buckets"`
}

func (r *S3BucketPublicAccessBlock) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_s3_bucket_public_access_block", Name: r.Bucket.Name}
}

func (r *S3BucketPublicAccessBlock) MarshalJSON() ([]byte, error) {
	type alias S3BucketPublicAccessBlock
	return json.Marshal(struct {
		*alias
		Bucket string `json:"bucket"`
	}{alias: (*alias)(r), Bucket: r.Bucket.Reference()})
}

type S3SSEByDefault struct {
	SSEAlgorithm   string `json:"sse_algorithm"`
	KMSMasterKeyID string `json:"kms_master_key_id,omitempty"`
}

type S3SSERule struct {
	ApplyServerSideEncryptionByDefault []S3SSEByDefault `json:"apply_server_side_encryption_by_default"`
}

type S3BucketServerSideEncryption struct {
	tf.BaseResource
	Bucket tf.ResourceId `json:"-"`
	Rule   []S3SSERule   `json:"rule"`
}

func (r *S3BucketServerSideEncryption) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_s3_bucket_server_side_encryption_configuration", Name: r.Bucket.Name}
}

func (r *S3BucketServerSideEncryption) MarshalJSON() ([]byte, error) {
	type alias S3BucketServerSideEncryption
	return json.Marshal(struct {
		*alias
		Bucket string `json:"bucket"`
	}{alias: (*alias)(r), Bucket: r.Bucket.Reference()})
}

// S3Object is an aws_s3_object. Exactly one of Source or Content is set.
type S3Object struct {
	tf.BaseResource
	ResourceName string            `json:"-"`
	Bucket       string            `json:"bucket"`
	Key          string            `json:"key"`
	Source       string            `json:"source,omitempty"`
	Content      string            `json:"content,omitempty"`
	Etag         string            `json:"etag,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
}

func (r *S3Object) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_s3_object", Name: r.ResourceName}
}
