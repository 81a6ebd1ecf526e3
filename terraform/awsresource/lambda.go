package awsresource

import (
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

const (
	LambdaRuntimeProvidedAL2023 = "provided.al2023"
	LambdaArchitectureArm64     = "arm64"
)

type LambdaEnvironment struct {
	Variables map[string]string `json:"variables"`
}

type LambdaFunction struct {
	tf.BaseResource
	FunctionName   string              `json:"function_name"`
	Description    string              `json:"description,omitempty"`
	Role           string              `json:"role"`
	Handler        string              `json:"handler"`
	Runtime        string              `json:"runtime"`
	Architectures  []string            `json:"architectures,omitempty"`
	S3Bucket       string              `json:"s3_bucket"`
	S3Key          string              `json:"s3_key"`
	SourceCodeHash string              `json:"source_code_hash,omitempty"`
	Timeout        int                 `json:"timeout,omitempty"`
	MemorySize     int                 `json:"memory_size,omitempty"`
	Publish        bool                `json:"publish,omitempty"`
	Environment    []LambdaEnvironment `json:"environment,omitempty"`
	Tags           map[string]string   `json:"tags,omitempty"`
}

func (r *LambdaFunction) ResourceId() tf.ResourceId {
	return LambdaFunctionResourceId(r.FunctionName)
}

// LambdaFunctionResourceId lets callers reference a function by name before it is built.
func LambdaFunctionResourceId(functionName string) tf.ResourceId {
	return tf.ResourceId{Type: "aws_lambda_function", Name: functionName}
}
