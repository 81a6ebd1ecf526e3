package pipelineops

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/samsarahq/go/oops"

	"github.com/koljamaier/aws-dwh/config/stackconfig"
	"github.com/koljamaier/aws-dwh/lambdafunctions/util"
	"github.com/koljamaier/aws-dwh/qualitycheck"
)

const (
	EngineAthena = "athena"
	EnginePresto = "presto"
)

// QualityCheckResult is the typed result returned by QualityCheckOp.Execute().
type QualityCheckResult struct {
	Engine   string `json:"engine"`
	Database string `json:"database"`
	Verdict  string `json:"verdict"`
	Passed   bool   `json:"passed"`
}

// QualityCheckOp runs the post-load quality check from the operator's
// machine, against Athena or a Presto endpoint over the same tables.
type QualityCheckOp struct {
	// Inputs
	Config    stackconfig.StackConfig
	Engine    string
	PrestoDSN string

	engine qualitycheck.QueryEngine
	closer func() error
}

func NewQualityCheckOp(cfg stackconfig.StackConfig, engine string, prestoDSN string) *QualityCheckOp {
	return &QualityCheckOp{
		Config:    cfg,
		Engine:    engine,
		PrestoDSN: prestoDSN,
	}
}

func (o *QualityCheckOp) Name() string {
	return "pipeline-quality-check"
}

func (o *QualityCheckOp) Description() string {
	return "Run the data quality query and print the verdict"
}

func (o *QualityCheckOp) Validate(ctx context.Context) error {
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if o.engine != nil {
		return nil
	}

	switch strings.ToLower(o.Engine) {
	case "", EngineAthena:
		o.Engine = EngineAthena
		sess, err := session.NewSession(util.AWSConfig(o.Config.Region))
		if err != nil {
			return oops.Wrapf(err, "aws session for region %s", o.Config.Region)
		}
		o.engine = qualitycheck.NewAthenaEngine(athena.New(sess), o.Config.Glue.Database, o.Config.AthenaOutputLocation())
	case EnginePresto:
		o.Engine = EnginePresto
		if o.PrestoDSN == "" {
			return oops.Errorf("--presto-dsn is required with --engine=presto")
		}
		engine, err := qualitycheck.OpenPresto(o.PrestoDSN)
		if err != nil {
			return err
		}
		o.engine = engine
		o.closer = engine.Close
	default:
		return oops.Errorf("unknown engine %q, expected %s or %s", o.Engine, EngineAthena, EnginePresto)
	}
	return nil
}

func (o *QualityCheckOp) Plan(ctx context.Context) error {
	fmt.Println()
	fmt.Println("📋 Quality check")
	fmt.Printf("   Engine:   %s\n", o.Engine)
	fmt.Printf("   Database: %s\n", o.Config.Glue.Database)
	if o.Engine == EngineAthena {
		fmt.Printf("   Results:  %s\n", o.Config.AthenaOutputLocation())
	}
	fmt.Printf("   Query:    %s\n", qualitycheck.Query(o.Config.Glue.Database))
	return nil
}

func (o *QualityCheckOp) Execute(ctx context.Context) (any, error) {
	if o.engine == nil {
		return nil, oops.Errorf("Validate() must be called before Execute()")
	}
	if o.closer != nil {
		defer o.closer()
	}

	verdict, err := qualitycheck.NewChecker(o.engine, o.Config.Glue.Database).Check(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Println()
	if verdict == qualitycheck.Passed {
		fmt.Println("✅", verdict)
	} else {
		fmt.Println("❌", verdict)
	}
	return &QualityCheckResult{
		Engine:   o.Engine,
		Database: o.Config.Glue.Database,
		Verdict:  verdict,
		Passed:   verdict == qualitycheck.Passed,
	}, nil
}
