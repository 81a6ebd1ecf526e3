package pipelineops

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/glue"
	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"

	"github.com/koljamaier/aws-dwh/config/stackconfig"
	"github.com/koljamaier/aws-dwh/crawler"
	"github.com/koljamaier/aws-dwh/qualitycheck"
	"github.com/koljamaier/aws-dwh/stepfunctions/pipeline"
	"github.com/koljamaier/aws-dwh/stepfunctions/statemachine"
	"github.com/koljamaier/aws-dwh/stepfunctions/statemachine/localexec"
	"github.com/koljamaier/aws-dwh/terraform/dwhprojects"
)

const (
	simulatedAccount   = "000000000000"
	simulatedClusterId = "j-SIMULATED"
	simulatedStepId    = "s-SIMULATED"
)

// SimulateOp runs the pipeline definition in process with stand-ins for
// EMR and the functions, to check the data flow between states without
// touching AWS.
type SimulateOp struct {
	// Inputs
	Config stackconfig.StackConfig
	Input  string
	// FailState makes the named state's integration fail.
	FailState string
	// NullCount is what the simulated quality query returns.
	NullCount int

	def   *statemachine.StepFunctionDefinition
	input map[string]interface{}
	glue  *simulatedGlue
}

func NewSimulateOp(cfg stackconfig.StackConfig, input string) *SimulateOp {
	return &SimulateOp{Config: cfg, Input: input}
}

func (o *SimulateOp) Name() string {
	return "pipeline-simulate"
}

func (o *SimulateOp) Description() string {
	return "Run the pipeline state machine locally against simulated services"
}

func lambdaArn(region string, name string) string {
	return fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s", region, simulatedAccount, name)
}

func (o *SimulateOp) Validate(ctx context.Context) error {
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(o.Input) == "" {
		o.Input = "{}"
	}
	if err := json.Unmarshal([]byte(o.Input), &o.input); err != nil {
		return oops.Wrapf(err, "--input must be a JSON object")
	}

	cfg := pipeline.Config{
		Name:              o.Config.Pipeline.Name,
		LogBucket:         o.Config.Buckets.Logs,
		ReleaseLabel:      o.Config.EMR.ReleaseLabel,
		InstanceType:      o.Config.EMR.InstanceType,
		CoreInstanceCount: o.Config.EMR.CoreInstanceCount,
		ServiceRole:       "emr-service-" + o.Config.Pipeline.Name,
		JobFlowRole:       "emr-ec2-" + o.Config.Pipeline.Name,
		SparkScript:       fmt.Sprintf("s3://%s/%s", o.Config.Buckets.Artifacts, o.Config.EMR.SparkScript),
		SparkArgs:         []string{o.Config.ETL.Input, o.Config.ETL.Output},
		TerminateCluster:  o.Config.Pipeline.TerminateCluster,
	}
	if o.Config.Pipeline.PostProcessing {
		cfg.TriggerCrawlerFunctionArn = lambdaArn(o.Config.Region, dwhprojects.TriggerCrawlerFunctionName)
		cfg.QualityCheckFunctionArn = lambdaArn(o.Config.Region, dwhprojects.QualityCheckFunctionName)
	}

	def, err := pipeline.Build(cfg)
	if err != nil {
		return err
	}
	if err := pipeline.Validate(def, o.input); err != nil {
		return oops.Wrapf(err, "pipeline definition")
	}
	if o.FailState != "" {
		if _, ok := def.Lookup(o.FailState); !ok {
			return oops.Errorf("--fail-state %s is not a state of %s", o.FailState, def.Name)
		}
	}
	o.def = def
	return nil
}

func (o *SimulateOp) Plan(ctx context.Context) error {
	if o.def == nil {
		return oops.Errorf("Validate() must be called before Plan()")
	}

	fmt.Println()
	fmt.Printf("📋 Simulate %s\n", o.def.Name)
	for s := o.def.StartAt; s != nil; {
		marker := ""
		if s.Name() == o.FailState {
			marker = "  (fails)"
		}
		fmt.Printf("   %-28s %s%s\n", s.Name(), s.Type(), marker)
		next := s.NextState()
		if next == nil {
			break
		}
		s, _ = o.def.Lookup(*next)
	}
	return nil
}

func (o *SimulateOp) Execute(ctx context.Context) (any, error) {
	if o.def == nil {
		return nil, oops.Errorf("Validate() must be called before Execute()")
	}

	o.glue = &simulatedGlue{}
	exec := &localexec.Executor{
		Integrations: o.integrations(),
		Log:          logrus.StandardLogger(),
	}
	execution, err := exec.Run(ctx, o.def, []byte(o.Input))
	if execution == nil {
		return nil, err
	}
	printTrace(execution)
	return execution, err
}

func (o *SimulateOp) integrations() map[string]localexec.Integration {
	emr := func(action string) string {
		return statemachine.ServiceResource("elasticmapreduce", action, statemachine.IntegrationSync)
	}
	static := func(result string) localexec.IntegrationFunc {
		return func(ctx context.Context, task *statemachine.TaskState, input []byte) ([]byte, error) {
			return []byte(result), nil
		}
	}

	integrations := map[string]localexec.Integration{
		emr(statemachine.EMRCreateClusterAction): static(fmt.Sprintf(
			`{"ClusterId":%q,"ClusterArn":"arn:aws:elasticmapreduce:%s:%s:cluster/%s"}`,
			simulatedClusterId, o.Config.Region, simulatedAccount, simulatedClusterId)),
		emr(statemachine.EMRAddStepAction):          static(fmt.Sprintf(`{"StepId":%q}`, simulatedStepId)),
		emr(statemachine.EMRTerminateClusterAction): static(`{}`),
	}
	integrations[lambdaArn(o.Config.Region, dwhprojects.TriggerCrawlerFunctionName)] = localexec.IntegrationFunc(o.triggerCrawler)
	integrations[lambdaArn(o.Config.Region, dwhprojects.QualityCheckFunctionName)] = localexec.IntegrationFunc(o.qualityCheck)

	for resource, integration := range integrations {
		integrations[resource] = o.failing(integration)
	}
	return integrations
}

// failing wraps integration so the state named by FailState errors.
func (o *SimulateOp) failing(integration localexec.Integration) localexec.Integration {
	return localexec.IntegrationFunc(func(ctx context.Context, task *statemachine.TaskState, input []byte) ([]byte, error) {
		if task.Name() == o.FailState {
			return nil, oops.Errorf("simulated failure of %s", task.Name())
		}
		return integration.Invoke(ctx, task, input)
	})
}

func (o *SimulateOp) triggerCrawler(ctx context.Context, task *statemachine.TaskState, input []byte) ([]byte, error) {
	name := o.Config.CrawlerName()
	if err := crawler.New(o.glue).Start(ctx, name); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{"crawler_name": name, "started": true})
}

func (o *SimulateOp) qualityCheck(ctx context.Context, task *statemachine.TaskState, input []byte) ([]byte, error) {
	engine := staticCount(strconv.Itoa(o.NullCount))
	verdict, err := qualitycheck.NewChecker(engine, o.Config.Glue.Database).Check(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(verdict)
}

type staticCount string

func (c staticCount) Count(ctx context.Context, query string) (string, error) {
	return string(c), nil
}

// simulatedGlue records the crawlers started during a simulation.
type simulatedGlue struct {
	started []string
}

func (g *simulatedGlue) StartCrawlerWithContext(ctx aws.Context, input *glue.StartCrawlerInput, opts ...request.Option) (*glue.StartCrawlerOutput, error) {
	g.started = append(g.started, aws.StringValue(input.Name))
	return &glue.StartCrawlerOutput{}, nil
}

func printTrace(execution *localexec.Execution) {
	fmt.Println()
	fmt.Printf("🧪 Execution %s\n", execution.Name)
	for _, step := range execution.Trace {
		output := string(step.Output)
		if output == "" {
			output = "-"
		}
		fmt.Printf("   %-28s %-8s %s\n", step.State, step.Type, output)
	}
	if execution.Output != nil {
		fmt.Printf("   Output: %s\n", execution.Output)
	}
}
