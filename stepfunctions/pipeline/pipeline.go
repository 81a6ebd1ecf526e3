// Package pipeline builds the EMR data warehouse state machine.
package pipeline

import (
	"fmt"

	"github.com/samsarahq/go/oops"

	"github.com/koljamaier/aws-dwh/stepfunctions/statemachine"
)

// State names as they appear in the Step Functions console.
const (
	CreateClusterStateName    = "CreateCluster"
	RunSparkJobStateName      = "RunSparkJob"
	TerminateClusterStateName = "TerminateCluster"
	TriggerCrawlerStateName   = "TriggerGlueCrawlerLambda"
	QualityCheckStateName     = "QualityCheckAthenaLambda"
)

const clusterIdPath = "$.ClusterId"

type Config struct {
	// Name names both the cluster and the state machine pipeline.
	Name string

	LogBucket         string
	ReleaseLabel      string
	InstanceType      string
	CoreInstanceCount int

	// ServiceRole and JobFlowRole are the EMR service role and the name of
	// the instance profile assumed by cluster nodes.
	ServiceRole string
	JobFlowRole string

	// SparkScript is the s3:// location of the job submitted as a step.
	SparkScript string
	// SparkArgs follow the script on the spark-submit command line.
	SparkArgs []string

	TerminateCluster bool

	// Post-processing lambdas, both set or both empty.
	TriggerCrawlerFunctionArn string
	QualityCheckFunctionArn   string
}

func (c Config) postProcessing() (bool, error) {
	switch {
	case c.TriggerCrawlerFunctionArn == "" && c.QualityCheckFunctionArn == "":
		return false, nil
	case c.TriggerCrawlerFunctionArn == "" || c.QualityCheckFunctionArn == "":
		return false, oops.Errorf("post-processing needs both the crawler trigger and the quality check function")
	}
	return true, nil
}

// SparkSubmitArgs are the command-runner arguments for a cluster-mode pyspark job.
func SparkSubmitArgs(script string, args ...string) []string {
	return append([]string{
		"spark-submit",
		"--deploy-mode", "cluster",
		"--master", "yarn",
		script,
	}, args...)
}

/*
Build generates a strictly linear pipeline. Optional states are left out
rather than skipped, so the chain never branches.

	┌──────────────────────────────┐
	│        CreateCluster         │  ResultPath/OutputPath $.ClusterId
	└──────────────────────────────┘
	  │
	  ▼
	┌──────────────────────────────┐
	│         RunSparkJob          │  ResultPath null
	└──────────────────────────────┘
	  │
	  ▼
	┌──────────────────────────────┐
	│       TerminateCluster       │  optional, ResultPath null
	└──────────────────────────────┘
	  │
	  ▼
	┌──────────────────────────────┐
	│   TriggerGlueCrawlerLambda   │  optional, ResultPath null
	└──────────────────────────────┘
	  │
	  ▼
	┌──────────────────────────────┐
	│   QualityCheckAthenaLambda   │  optional, End
	└──────────────────────────────┘
*/
func Build(cfg Config) (*statemachine.StepFunctionDefinition, error) {
	if cfg.Name == "" {
		return nil, oops.Errorf("pipeline name is required")
	}
	if cfg.SparkScript == "" {
		return nil, oops.Errorf("pipeline %s: spark script is required", cfg.Name)
	}
	if cfg.CoreInstanceCount < 1 {
		return nil, oops.Errorf("pipeline %s: at least one core instance is required", cfg.Name)
	}
	postProcessing, err := cfg.postProcessing()
	if err != nil {
		return nil, oops.Wrapf(err, "pipeline %s", cfg.Name)
	}

	// States are built back to front so each one can point at its successor.
	var states []statemachine.State
	var next *string

	if postProcessing {
		qualityCheck := statemachine.CreateLambdaTaskState(
			QualityCheckStateName,
			cfg.QualityCheckFunctionArn,
			nil,
			"Runs the data quality query and returns the verdict",
		)
		triggerCrawler := statemachine.CreateLambdaTaskState(
			TriggerCrawlerStateName,
			cfg.TriggerCrawlerFunctionArn,
			qualityCheck.Reference(),
			"Starts the glue crawler over the output bucket",
		)
		triggerCrawler.ResultPath = statemachine.NullPath()
		states = append(states, triggerCrawler, qualityCheck)
		next = triggerCrawler.Reference()
	}

	if cfg.TerminateCluster {
		terminate := statemachine.CreateEMRTerminateClusterState(
			TerminateClusterStateName,
			clusterIdPath,
			next,
			"Shuts the cluster down",
		)
		terminate.ResultPath = statemachine.NullPath()
		states = append([]statemachine.State{terminate}, states...)
		next = terminate.Reference()
	}

	runJob := statemachine.CreateEMRAddStepState(
		RunSparkJobStateName,
		clusterIdPath,
		statemachine.EMRStep{
			Name:            "SparkETL",
			ActionOnFailure: "CONTINUE",
			Jar:             "command-runner.jar",
			Args:            SparkSubmitArgs(cfg.SparkScript, cfg.SparkArgs...),
		},
		next,
		"Submits the ETL job and waits for the step to finish",
	)
	runJob.ResultPath = statemachine.NullPath()

	createCluster := statemachine.CreateEMRCreateClusterState(
		CreateClusterStateName,
		statemachine.EMRCluster{
			Name:         cfg.Name,
			ReleaseLabel: cfg.ReleaseLabel,
			Applications: []string{"Spark"},
			LogUri:       fmt.Sprintf("s3://%s/%s", cfg.LogBucket, cfg.Name),
			ServiceRole:  cfg.ServiceRole,
			JobFlowRole:  cfg.JobFlowRole,
			InstanceGroups: []statemachine.EMRInstanceGroup{
				{Name: "Master", InstanceRole: statemachine.EMRInstanceRoleMaster, InstanceType: cfg.InstanceType, InstanceCount: 1},
				{Name: "Core", InstanceRole: statemachine.EMRInstanceRoleCore, InstanceType: cfg.InstanceType, InstanceCount: cfg.CoreInstanceCount},
			},
		},
		runJob.Reference(),
		"Creates the cluster and waits until it accepts steps",
	)
	// Only the cluster id moves forward.
	createCluster.ResultPath = statemachine.Path(clusterIdPath)
	createCluster.OutputPath = statemachine.Path(clusterIdPath)

	states = append([]statemachine.State{createCluster, runJob}, states...)

	def := &statemachine.StepFunctionDefinition{
		Name:    cfg.Name,
		Comment: fmt.Sprintf("%s: EMR spark ETL pipeline", cfg.Name),
		StartAt: createCluster,
		States:  states,
	}
	if err := Validate(def, nil); err != nil {
		return nil, oops.Wrapf(err, "pipeline %s", cfg.Name)
	}
	return def, nil
}
