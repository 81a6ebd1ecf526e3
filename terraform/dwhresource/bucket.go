// Package dwhresource builds the composite resources of the warehouse
// stack: buckets, roles, functions and deployed artifacts.
package dwhresource

import (
	"strings"

	"github.com/koljamaier/aws-dwh/terraform/awsresource"
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

type Bucket struct {
	Name           string
	Region         string
	PreventDestroy bool
	// ForceDestroy lets terraform delete a bucket that still has objects.
	ForceDestroy bool
}

func (b Bucket) resourceName() string {
	return resourceName(b.Name)
}

func (b Bucket) Bucket() *awsresource.S3Bucket {
	bucket := &awsresource.S3Bucket{
		Name:         b.resourceName(),
		Bucket:       b.Name,
		ForceDestroy: b.ForceDestroy,
		Tags: map[string]string{
			"dwh:service": "s3-" + b.resourceName(),
		},
	}
	if b.PreventDestroy {
		bucket.BaseResource.Lifecycle.PreventDestroy = true
	}
	return bucket
}

// Encryption enables SSE-S3 for every new object.
func (b Bucket) Encryption() *awsresource.S3BucketServerSideEncryption {
	return &awsresource.S3BucketServerSideEncryption{
		Bucket: b.Bucket().ResourceId(),
		Rule: []awsresource.S3SSERule{
			{
				ApplyServerSideEncryptionByDefault: []awsresource.S3SSEByDefault{
					{SSEAlgorithm: awsresource.S3SSEAlgorithmAES256},
				},
			},
		},
	}
}

func (b Bucket) PublicAccessBlock() *awsresource.S3BucketPublicAccessBlock {
	return &awsresource.S3BucketPublicAccessBlock{
		Bucket:                b.Bucket().ResourceId(),
		BlockPublicAcls:       true,
		IgnorePublicAcls:      true,
		BlockPublicPolicy:     true,
		RestrictPublicBuckets: true,
	}
}

// Resources returns the bucket with its encryption and access block.
func (b Bucket) Resources() []tf.Resource {
	return []tf.Resource{
		b.Bucket(),
		b.Encryption(),
		b.PublicAccessBlock(),
	}
}

// resourceName turns an AWS name into a Terraform resource name.
func resourceName(s string) string {
	return strings.NewReplacer("-", "_", ".", "_", "/", "_").Replace(s)
}
