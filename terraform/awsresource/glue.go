package awsresource

import (
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

type GlueCatalogDatabase struct {
	tf.BaseResource
	ResourceName string `json:"-"`
	Name         string `json:"name"`
	LocationUri  string `json:"location_uri,omitempty"`
	Description  string `json:"description,omitempty"`
}

func (r *GlueCatalogDatabase) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_glue_catalog_database", Name: r.ResourceName}
}

type GlueCrawlerS3Target struct {
	Path       string   `json:"path"`
	Exclusions []string `json:"exclusions,omitempty"`
}

type GlueCrawler struct {
	tf.BaseResource
	ResourceName string                `json:"-"`
	Name         string                `json:"name"`
	DatabaseName string                `json:"database_name"`
	Role         string                `json:"role"`
	Schedule     string                `json:"schedule,omitempty"`
	S3Targets    []GlueCrawlerS3Target `json:"s3_target"`
	Tags         map[string]string     `json:"tags,omitempty"`
}

func (r *GlueCrawler) ResourceId() tf.ResourceId {
	return tf.ResourceId{Type: "aws_glue_crawler", Name: r.ResourceName}
}
