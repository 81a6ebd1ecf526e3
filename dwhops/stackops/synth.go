package stackops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/koljamaier/aws-dwh/config/stackconfig"
	"github.com/koljamaier/aws-dwh/terraform/dwhprojects"
	"github.com/koljamaier/aws-dwh/terraform/dwhresource"
)

// maxConcurrentBuilds bounds parallel go build invocations.
const maxConcurrentBuilds = 4

// SynthResult is the typed result returned by SynthOp.Execute().
type SynthResult struct {
	OutDir   string   `json:"outDir"`
	Projects []string `json:"projects"`
	Files    []string `json:"files"`
}

// SynthOp renders every project of the stack into OutDir.
type SynthOp struct {
	// Inputs
	Config   stackconfig.StackConfig
	RepoRoot string
	OutDir   string

	builder LambdaBuilder

	// Planned state
	lambdas []*dwhresource.GoLambdaFunction
}

func NewSynthOp(cfg stackconfig.StackConfig, repoRoot string, outDir string) *SynthOp {
	return &SynthOp{
		Config:   cfg,
		RepoRoot: repoRoot,
		OutDir:   outDir,
	}
}

func (o *SynthOp) Name() string {
	return "stack-synth"
}

func (o *SynthOp) Description() string {
	return "Build the lambdas and render the stack's Terraform projects"
}

func (o *SynthOp) Validate(ctx context.Context) error {
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(o.OutDir) == "" {
		return oops.Errorf("--out is required")
	}
	script := filepath.Join(o.RepoRoot, o.Config.EMR.SparkScript)
	if _, err := os.Stat(script); err != nil {
		return oops.Wrapf(err, "spark script %s", script)
	}
	if o.builder == nil {
		o.builder = &GoBuilder{RepoRoot: o.RepoRoot}
	}
	return nil
}

func (o *SynthOp) Plan(ctx context.Context) error {
	o.lambdas = dwhprojects.Lambdas(o.Config)

	fmt.Println()
	fmt.Printf("📋 Synthesize stack %s (variant %s, region %s)\n", o.Config.Stack, o.Config.Variant, o.Config.Region)
	fmt.Printf("   State machine: %s\n", o.Config.StateMachineName())
	fmt.Printf("   Spark script:  %s\n", o.Config.EMR.SparkScript)
	for _, fn := range o.lambdas {
		fmt.Printf("   Lambda:        %s (%s)\n", fn.Name, fn.MainPackage())
	}
	fmt.Printf("   Output:        %s\n", o.OutDir)
	return nil
}

func (o *SynthOp) Execute(ctx context.Context) (any, error) {
	return o.synthesize(ctx)
}

func (o *SynthOp) synthesize(ctx context.Context) (*SynthResult, error) {
	if o.builder == nil {
		return nil, oops.Errorf("Validate() must be called before Execute()")
	}

	zips, err := o.buildLambdas(ctx)
	if err != nil {
		return nil, err
	}
	script, err := os.ReadFile(filepath.Join(o.RepoRoot, o.Config.EMR.SparkScript))
	if err != nil {
		return nil, oops.Wrapf(err, "read spark script")
	}

	projects, err := dwhprojects.AllProjects(o.Config, dwhprojects.Artifacts{
		LambdaZips:  zips,
		SparkScript: script,
	})
	if err != nil {
		return nil, err
	}

	result := &SynthResult{OutDir: o.OutDir}
	for _, p := range projects {
		written, err := p.Write(o.OutDir)
		if err != nil {
			return nil, err
		}
		result.Projects = append(result.Projects, p.Name)
		result.Files = append(result.Files, written...)
		logrus.WithFields(logrus.Fields{"project": p.Name, "files": len(written)}).Info("wrote project")
	}
	sort.Strings(result.Files)
	return result, nil
}

func (o *SynthOp) buildLambdas(ctx context.Context) (map[string][]byte, error) {
	var mu sync.Mutex
	zips := make(map[string][]byte, len(o.lambdas))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBuilds)
	for _, fn := range o.lambdas {
		fn := fn
		g.Go(func() error {
			zip, err := o.builder.Build(ctx, fn)
			if err != nil {
				return oops.Wrapf(err, "build lambda %s", fn.Name)
			}
			mu.Lock()
			defer mu.Unlock()
			zips[fn.Name] = zip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return zips, nil
}
