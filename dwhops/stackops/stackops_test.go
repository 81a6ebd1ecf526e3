package stackops

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koljamaier/aws-dwh/config/stackconfig"
	"github.com/koljamaier/aws-dwh/terraform/dwhprojects"
	"github.com/koljamaier/aws-dwh/terraform/dwhresource"
	"github.com/koljamaier/aws-dwh/vendormocks/mock_stackops"
)

type fakeBuilder struct {
	mu    sync.Mutex
	built []string
	err   error
}

func (b *fakeBuilder) Build(ctx context.Context, fn *dwhresource.GoLambdaFunction) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	b.built = append(b.built, fn.Name)
	return []byte("zip-" + fn.Name), nil
}

type terraformCall struct {
	project string
	command string
}

type fakeTerraform struct {
	calls []terraformCall
	err   error
}

func (f *fakeTerraform) record(dir string, command string) error {
	f.calls = append(f.calls, terraformCall{project: filepath.Base(dir), command: command})
	return f.err
}

func (f *fakeTerraform) Init(ctx context.Context, dir string) error {
	return f.record(dir, "init")
}

func (f *fakeTerraform) Apply(ctx context.Context, dir string) error {
	return f.record(dir, "apply")
}

func testSynthOp(t *testing.T, builder LambdaBuilder) *SynthOp {
	repo := t.TempDir()
	cfg := stackconfig.Default()
	script := filepath.Join(repo, cfg.EMR.SparkScript)
	require.NoError(t, os.MkdirAll(filepath.Dir(script), 0o755))
	require.NoError(t, os.WriteFile(script, []byte("print('etl')\n"), 0o644))

	op := NewSynthOp(cfg, repo, filepath.Join(t.TempDir(), "out"))
	op.builder = builder
	return op
}

func TestZipBootstrap(t *testing.T) {
	archive, err := ZipBootstrap([]byte("binary"))
	require.NoError(t, err)

	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	require.Len(t, r.File, 1)
	assert.Equal(t, "bootstrap", r.File[0].Name)
	assert.Equal(t, os.FileMode(0o755), r.File[0].Mode().Perm())

	f, err := r.File[0].Open()
	require.NoError(t, err)
	defer f.Close()
	contents, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "binary", string(contents))

	again, err := ZipBootstrap([]byte("binary"))
	require.NoError(t, err)
	assert.Equal(t, archive, again)
}

func TestSynthOp(t *testing.T) {
	builder := &fakeBuilder{}
	op := testSynthOp(t, builder)
	ctx := context.Background()

	require.NoError(t, op.Validate(ctx))
	require.NoError(t, op.Plan(ctx))
	out, err := op.Execute(ctx)
	require.NoError(t, err)

	result := out.(*SynthResult)
	assert.Equal(t, []string{dwhprojects.DWHProjectName, dwhprojects.ExampleProjectName}, result.Projects)
	assert.ElementsMatch(t, []string{dwhprojects.TriggerCrawlerFunctionName, dwhprojects.QualityCheckFunctionName}, builder.built)

	assert.Contains(t, result.Files, filepath.Join(op.OutDir, "dwh", "pipeline.tf.json"))
	assert.Contains(t, result.Files, filepath.Join(op.OutDir, "example", "messaging.tf.json"))

	zip, err := os.ReadFile(filepath.Join(op.OutDir, "dwh", "artifacts", "lambdas", dwhprojects.QualityCheckFunctionName, "bootstrap.zip"))
	require.NoError(t, err)
	assert.Equal(t, "zip-"+dwhprojects.QualityCheckFunctionName, string(zip))

	script, err := os.ReadFile(filepath.Join(op.OutDir, "dwh", "artifacts", "pyspark", "etl.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('etl')\n", string(script))
}

func TestSynthOpErrors(t *testing.T) {
	testCases := map[string]struct {
		mutate        func(op *SynthOp)
		builderErr    error
		errorExpected string
		validateFails bool
	}{
		"missingOutDir": {
			mutate:        func(op *SynthOp) { op.OutDir = " " },
			errorExpected: "--out is required",
			validateFails: true,
		},
		"missingScript": {
			mutate:        func(op *SynthOp) { op.Config.EMR.SparkScript = "pyspark/missing.py" },
			errorExpected: "spark script",
			validateFails: true,
		},
		"invalidConfig": {
			mutate:        func(op *SynthOp) { op.Config.Region = "" },
			validateFails: true,
		},
		"buildFails": {
			builderErr:    errors.New("compile error"),
			errorExpected: "compile error",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			op := testSynthOp(t, &fakeBuilder{err: tc.builderErr})
			if tc.mutate != nil {
				tc.mutate(op)
			}
			ctx := context.Background()

			err := op.Validate(ctx)
			if !tc.validateFails {
				require.NoError(t, err)
				require.NoError(t, op.Plan(ctx))
				_, err = op.Execute(ctx)
			}
			require.Error(t, err)
			if tc.errorExpected != "" {
				assert.Contains(t, err.Error(), tc.errorExpected)
			}
		})
	}
}

func TestDeployOp(t *testing.T) {
	testCases := map[string]struct {
		terraformErr    error
		missingAfter    bool
		errorExpected   string
		expectedApplied []string
	}{
		"appliesEveryProject": {
			expectedApplied: []string{"dwh", "example"},
		},
		"terraformFails": {
			terraformErr:  errors.New("apply failed"),
			errorExpected: "apply failed",
		},
		"bucketMissingAfterApply": {
			missingAfter:  true,
			errorExpected: "is missing after apply",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			ctx := context.Background()

			s3Client := mock_stackops.NewMockS3API(ctrl)
			stsClient := mock_stackops.NewMockSTSAPI(ctrl)
			terraform := &fakeTerraform{err: tc.terraformErr}

			op := NewDeployOp(testSynthOp(t, &fakeBuilder{}))
			op.s3Client = s3Client
			op.stsClient = stsClient
			op.terraform = terraform

			stsClient.EXPECT().GetCallerIdentity(gomock.Any(), gomock.Any()).Return(&sts.GetCallerIdentityOutput{
				Account: aws.String("123456789012"),
				Arn:     aws.String("arn:aws:iam::123456789012:user/deployer"),
			}, nil)
			s3Client.EXPECT().HeadBucket(gomock.Any(), gomock.Any()).Return(nil, &types.NotFound{}).Times(4)
			switch {
			case tc.missingAfter:
				s3Client.EXPECT().HeadBucket(gomock.Any(), gomock.Any()).Return(nil, &types.NotFound{})
				s3Client.EXPECT().HeadBucket(gomock.Any(), gomock.Any()).Return(&s3.HeadBucketOutput{}, nil).Times(3)
			case tc.terraformErr == nil:
				s3Client.EXPECT().HeadBucket(gomock.Any(), gomock.Any()).Return(&s3.HeadBucketOutput{}, nil).Times(4)
			}

			require.NoError(t, op.Validate(ctx))
			require.NoError(t, op.Plan(ctx))
			for _, b := range op.buckets {
				assert.False(t, b.Exists, b.Name)
			}

			out, err := op.Execute(ctx)
			if tc.errorExpected != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorExpected)
				return
			}
			require.NoError(t, err)

			result := out.(*DeployResult)
			assert.Equal(t, "123456789012", result.Account)
			assert.Equal(t, tc.expectedApplied, result.Applied)
			assert.Equal(t, []terraformCall{
				{project: "dwh", command: "init"},
				{project: "dwh", command: "apply"},
				{project: "example", command: "init"},
				{project: "example", command: "apply"},
			}, terraform.calls)
			for _, b := range result.Buckets {
				assert.True(t, b.Exists, b.Name)
			}
		})
	}
}

func TestDeployOpHeadBucketError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	s3Client := mock_stackops.NewMockS3API(ctrl)
	stsClient := mock_stackops.NewMockSTSAPI(ctrl)
	op := NewDeployOp(testSynthOp(t, &fakeBuilder{}))
	op.s3Client = s3Client
	op.stsClient = stsClient
	op.terraform = &fakeTerraform{}

	stsClient.EXPECT().GetCallerIdentity(gomock.Any(), gomock.Any()).Return(&sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
	}, nil)
	s3Client.EXPECT().HeadBucket(gomock.Any(), gomock.Any()).Return(nil, errors.New("access denied"))

	require.NoError(t, op.Validate(ctx))
	err := op.Plan(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "head bucket capstone-uda-data1")
}

func TestTerraformExecRejectsMissingProject(t *testing.T) {
	testCases := map[string]func(tf *terraformExec, ctx context.Context, dir string) error{
		"init":  (*terraformExec).Init,
		"apply": (*terraformExec).Apply,
	}

	for name, run := range testCases {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "dwh")
			tf := &terraformExec{execPath: "/usr/bin/terraform", stdout: io.Discard, stderr: io.Discard}

			err := run(tf, context.Background(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "terraform in "+dir)
		})
	}
}
