package dwhresource

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/samsarahq/go/oops"

	"github.com/koljamaier/aws-dwh/terraform/awsresource"
	"github.com/koljamaier/aws-dwh/terraform/project"
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

// ArtifactsDir is where uploaded files sit inside a generated project.
const ArtifactsDir = "artifacts"

var nameRe = regexp.MustCompile("[^a-z0-9]+")

func artifactName(s string) string {
	return strings.Trim(nameRe.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

func md5Hash(contents []byte) string {
	sum := md5.Sum(contents)
	return hex.EncodeToString(sum[:])
}

// Artifact is a file shipped with the project and uploaded to the
// artifact bucket under a content addressed key.
type Artifact struct {
	// Path is relative to the project, e.g. "pyspark/etl.py".
	Path     string
	Contents []byte
}

// Key is <project>/<path>/<md5>/<file name>, so a changed file gets a new key.
func (a Artifact) Key() string {
	return fmt.Sprintf("%s/%s/%s/%s",
		tf.LocalId("project_path").Reference(),
		a.Path,
		md5Hash(a.Contents),
		path.Base(a.Path),
	)
}

// ArtifactObject returns the file to write next to the Terraform and the
// object uploading it.
func ArtifactObject(bucket *awsresource.S3Bucket, artifact Artifact) (string, *project.ExtraFile, *awsresource.S3Object, error) {
	if artifact.Path == "" || path.IsAbs(artifact.Path) || strings.HasPrefix(path.Clean(artifact.Path), "..") {
		return "", nil, nil, oops.Errorf("artifact path %q must be relative to the project", artifact.Path)
	}
	if len(artifact.Contents) == 0 {
		return "", nil, nil, oops.Errorf("artifact %s is empty", artifact.Path)
	}

	local := path.Join(ArtifactsDir, path.Clean(artifact.Path))
	object := &awsresource.S3Object{
		ResourceName: artifactName(artifact.Path),
		Bucket:       bucket.ResourceId().Reference(),
		Key:          artifact.Key(),
		Source:       "${path.module}/" + local,
		Etag:         md5Hash(artifact.Contents),
	}
	return local, &project.ExtraFile{Contents: artifact.Contents}, object, nil
}

// S3URI is the object's location once uploaded.
func S3URI(bucket *awsresource.S3Bucket, object *awsresource.S3Object) string {
	return fmt.Sprintf("s3://%s/%s", bucket.Bucket, object.Key)
}
