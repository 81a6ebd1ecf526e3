package dwhresource

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"path"

	"github.com/samsarahq/go/oops"

	"github.com/koljamaier/aws-dwh/terraform/awsresource"
	"github.com/koljamaier/aws-dwh/terraform/policy"
	"github.com/koljamaier/aws-dwh/terraform/project"
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

const (
	// LambdaHandler is the executable name the provided runtimes start.
	LambdaHandler = "bootstrap"

	defaultLambdaTimeoutSeconds = 30
	defaultLambdaMemorySizeInMB = 128
)

// GoLambdaFunction is a Go main package deployed as an arm64 function on
// the provided.al2023 runtime.
type GoLambdaFunction struct {
	Name string
	// MainFile is the main package's file, relative to the module root.
	MainFile string
	Region   string

	TimeoutSeconds int
	MemorySizeInMB int
	Environment    map[string]string

	ManagedPolicyArns     []string
	ExtraPolicyStatements []policy.AWSPolicyStatement

	Publish bool
	Tags    map[string]string
}

// MainPackage is the directory go build compiles.
func (f *GoLambdaFunction) MainPackage() string {
	return "./" + path.Dir(f.MainFile)
}

func (f *GoLambdaFunction) ResourceId() tf.ResourceId {
	return awsresource.LambdaFunctionResourceId(f.Name)
}

// Arn interpolates the deployed function's ARN.
func (f *GoLambdaFunction) Arn() string {
	return f.ResourceId().ReferenceAttr("arn")
}

func (f *GoLambdaFunction) artifact(zip []byte) Artifact {
	return Artifact{Path: path.Join("lambdas", f.Name, LambdaHandler+".zip"), Contents: zip}
}

// ZipKey is the content addressed object key of the deployment package.
func (f *GoLambdaFunction) ZipKey(zip []byte) string {
	return f.artifact(zip).Key()
}

// FilesAndResources returns the deployment package to write into the
// project, and the role, upload and function resources.
func (f *GoLambdaFunction) FilesAndResources(artifactBucket *awsresource.S3Bucket, zip []byte) (map[string]*project.ExtraFile, []tf.Resource, error) {
	if f.Name == "" || f.MainFile == "" {
		return nil, nil, oops.Errorf("lambda needs a name and a main file")
	}
	if len(zip) == 0 {
		return nil, nil, oops.Errorf("lambda %s has no deployment package", f.Name)
	}

	roleId, resources := LambdaRole(f.Name, f.ManagedPolicyArns, f.ExtraPolicyStatements)

	local, file, object, err := ArtifactObject(artifactBucket, f.artifact(zip))
	if err != nil {
		return nil, nil, oops.Wrapf(err, "lambda %s", f.Name)
	}
	resources = append(resources, object)

	timeout := f.TimeoutSeconds
	if timeout == 0 {
		timeout = defaultLambdaTimeoutSeconds
	}
	memory := f.MemorySizeInMB
	if memory == 0 {
		memory = defaultLambdaMemorySizeInMB
	}

	sum := sha256.Sum256(zip)
	fn := &awsresource.LambdaFunction{
		FunctionName:   f.Name,
		Description:    fmt.Sprintf("Built from %s", f.MainFile),
		Role:           roleId.ReferenceAttr("arn"),
		Handler:        LambdaHandler,
		Runtime:        awsresource.LambdaRuntimeProvidedAL2023,
		Architectures:  []string{awsresource.LambdaArchitectureArm64},
		S3Bucket:       artifactBucket.ResourceId().Reference(),
		S3Key:          object.ResourceId().ReferenceAttr("key"),
		SourceCodeHash: base64.StdEncoding.EncodeToString(sum[:]),
		Timeout:        timeout,
		MemorySize:     memory,
		Publish:        f.Publish,
		Tags:           f.Tags,
	}
	if len(f.Environment) > 0 {
		fn.Environment = []awsresource.LambdaEnvironment{{Variables: f.Environment}}
	}
	resources = append(resources, fn)

	return map[string]*project.ExtraFile{local: file}, resources, nil
}
