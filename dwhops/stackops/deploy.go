package stackops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/hashicorp/terraform-exec/tfexec"
	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=../../vendormocks/mock_stackops/mock_stackops.go -package=mock_stackops github.com/koljamaier/aws-dwh/dwhops/stackops S3API,STSAPI

// S3API is the subset of the s3 client the deploy checks call.
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// STSAPI is the subset of the sts client used to show who deploys.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Terraform initializes and applies a project directory.
type Terraform interface {
	Init(ctx context.Context, dir string) error
	Apply(ctx context.Context, dir string) error
}

// terraformExec drives the terraform binary through tfexec. Apply is
// non-interactive: tfexec passes -input=false and -auto-approve.
type terraformExec struct {
	execPath string
	stdout   io.Writer
	stderr   io.Writer
}

func (t *terraformExec) project(dir string) (*tfexec.Terraform, error) {
	tf, err := tfexec.NewTerraform(dir, t.execPath)
	if err != nil {
		return nil, oops.Wrapf(err, "terraform in %s", dir)
	}
	tf.SetStdout(t.stdout)
	tf.SetStderr(t.stderr)
	return tf, nil
}

func (t *terraformExec) Init(ctx context.Context, dir string) error {
	tf, err := t.project(dir)
	if err != nil {
		return err
	}
	logrus.WithField("dir", dir).Debug("terraform init")
	if err := tf.Init(ctx); err != nil {
		return oops.Wrapf(err, "terraform init in %s", dir)
	}
	return nil
}

func (t *terraformExec) Apply(ctx context.Context, dir string) error {
	tf, err := t.project(dir)
	if err != nil {
		return err
	}
	logrus.WithField("dir", dir).Debug("terraform apply")
	if err := tf.Apply(ctx); err != nil {
		return oops.Wrapf(err, "terraform apply in %s", dir)
	}
	return nil
}

// BucketStatus tells whether a stack bucket exists yet.
type BucketStatus struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

// DeployResult is the typed result returned by DeployOp.Execute().
type DeployResult struct {
	Account   string         `json:"account"`
	Region    string         `json:"region"`
	Applied   []string       `json:"applied"`
	Buckets   []BucketStatus `json:"buckets"`
	Synthesis *SynthResult   `json:"synthesis"`
}

// DeployOp synthesizes the stack and applies every project with terraform.
type DeployOp struct {
	Synth *SynthOp

	// Clients
	s3Client  S3API
	stsClient STSAPI
	terraform Terraform

	// Planned state
	account string
	arn     string
	buckets []BucketStatus
}

func NewDeployOp(synth *SynthOp) *DeployOp {
	return &DeployOp{Synth: synth}
}

func (o *DeployOp) Name() string {
	return "stack-deploy"
}

func (o *DeployOp) Description() string {
	return "Synthesize the stack and apply it with terraform"
}

func (o *DeployOp) Validate(ctx context.Context) error {
	if o.Synth == nil {
		return oops.Errorf("deploy needs a synth operation")
	}
	if err := o.Synth.Validate(ctx); err != nil {
		return err
	}

	if o.terraform == nil {
		execPath, err := exec.LookPath("terraform")
		if err != nil {
			return oops.Wrapf(err, "terraform is not on PATH")
		}
		o.terraform = &terraformExec{execPath: execPath, stdout: os.Stdout, stderr: os.Stderr}
	}

	if o.s3Client == nil || o.stsClient == nil {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(o.Synth.Config.Region))
		if err != nil {
			return oops.Wrapf(err, "failed to load AWS config for region %s", o.Synth.Config.Region)
		}
		if o.s3Client == nil {
			o.s3Client = s3.NewFromConfig(cfg)
		}
		if o.stsClient == nil {
			o.stsClient = sts.NewFromConfig(cfg)
		}
	}
	return nil
}

func (o *DeployOp) Plan(ctx context.Context) error {
	identity, err := o.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return oops.Wrapf(err, "get caller identity")
	}
	o.account = aws.ToString(identity.Account)
	o.arn = aws.ToString(identity.Arn)

	o.buckets, err = o.bucketStatuses(ctx)
	if err != nil {
		return err
	}

	if err := o.Synth.Plan(ctx); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("🚀 Deploy")
	fmt.Printf("   Account:  %s\n", o.account)
	fmt.Printf("   Caller:   %s\n", o.arn)
	fmt.Printf("   Region:   %s\n", o.Synth.Config.Region)
	for _, b := range o.buckets {
		action := "create"
		if b.Exists {
			action = "keep"
		}
		fmt.Printf("   Bucket:   %-40s %s\n", b.Name, action)
	}
	fmt.Println("   terraform init and apply run in every project directory")
	return nil
}

// Execute only runs once the runner has confirmed, so apply is not
// interactive.
func (o *DeployOp) Execute(ctx context.Context) (any, error) {
	if o.terraform == nil || o.account == "" {
		return nil, oops.Errorf("Plan() must be called before Execute()")
	}

	synthesis, err := o.Synth.synthesize(ctx)
	if err != nil {
		return nil, oops.Wrapf(err, "synth")
	}

	result := &DeployResult{
		Account:   o.account,
		Region:    o.Synth.Config.Region,
		Synthesis: synthesis,
	}
	for _, name := range synthesis.Projects {
		dir := filepath.Join(synthesis.OutDir, name)
		if err := o.terraform.Init(ctx, dir); err != nil {
			return nil, err
		}
		if err := o.terraform.Apply(ctx, dir); err != nil {
			return nil, err
		}
		result.Applied = append(result.Applied, name)
		logrus.WithFields(logrus.Fields{"project": name, "account": o.account}).Info("applied project")
	}

	result.Buckets, err = o.bucketStatuses(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range result.Buckets {
		if !b.Exists {
			return nil, oops.Errorf("bucket %s is missing after apply", b.Name)
		}
	}
	return result, nil
}

func (o *DeployOp) bucketStatuses(ctx context.Context) ([]BucketStatus, error) {
	buckets := o.Synth.Config.Buckets
	names := []string{buckets.Data, buckets.Logs, buckets.AthenaResults, buckets.Artifacts}

	statuses := make([]BucketStatus, 0, len(names))
	for _, name := range names {
		exists, err := o.bucketExists(ctx, name)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, BucketStatus{Name: name, Exists: exists})
	}
	return statuses, nil
}

func (o *DeployOp) bucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := o.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, oops.Wrapf(err, "head bucket %s", bucket)
}
