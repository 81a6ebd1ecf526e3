// Package stackops synthesizes the stack's Terraform projects and deploys
// them.
package stackops

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"

	"github.com/koljamaier/aws-dwh/terraform/dwhresource"
)

// LambdaBuilder produces the deployment package of a function.
type LambdaBuilder interface {
	Build(ctx context.Context, fn *dwhresource.GoLambdaFunction) ([]byte, error)
}

// GoBuilder cross compiles a function's main package for the arm64
// provided runtime.
type GoBuilder struct {
	// RepoRoot is the module root the main packages are relative to.
	RepoRoot string
}

func (b *GoBuilder) Build(ctx context.Context, fn *dwhresource.GoLambdaFunction) ([]byte, error) {
	tmp, err := os.MkdirTemp("", "dwhops-"+fn.Name)
	if err != nil {
		return nil, oops.Wrapf(err, "tempdir")
	}
	defer os.RemoveAll(tmp)

	binary := filepath.Join(tmp, dwhresource.LambdaHandler)
	cmd := exec.CommandContext(ctx, "go", "build",
		"-tags", "lambda.norpc",
		"-trimpath",
		"-ldflags", "-s -w",
		"-o", binary,
		fn.MainPackage(),
	)
	cmd.Dir = b.RepoRoot
	cmd.Env = append(os.Environ(), "GOOS=linux", "GOARCH=arm64", "CGO_ENABLED=0")

	logrus.WithFields(logrus.Fields{"function": fn.Name, "package": fn.MainPackage()}).Debug("building lambda")
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, oops.Wrapf(err, "go build %s: %s", fn.MainPackage(), out)
	}

	contents, err := os.ReadFile(binary)
	if err != nil {
		return nil, oops.Wrapf(err, "read %s", binary)
	}
	return ZipBootstrap(contents)
}

// zipModified is fixed so that rebuilding an unchanged binary yields the
// same archive, and so the same object key.
var zipModified = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// ZipBootstrap packages binary as the single executable entry the
// provided runtimes start.
func ZipBootstrap(binary []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	header := &zip.FileHeader{
		Name:     dwhresource.LambdaHandler,
		Method:   zip.Deflate,
		Modified: zipModified,
	}
	header.SetMode(0o755)
	f, err := w.CreateHeader(header)
	if err != nil {
		return nil, oops.Wrapf(err, "zip header")
	}
	if _, err := f.Write(binary); err != nil {
		return nil, oops.Wrapf(err, "zip write")
	}
	if err := w.Close(); err != nil {
		return nil, oops.Wrapf(err, "zip close")
	}
	return buf.Bytes(), nil
}
