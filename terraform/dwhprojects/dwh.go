// Package dwhprojects assembles the Terraform projects of the stack.
package dwhprojects

import (
	"fmt"
	"sort"

	"github.com/samsarahq/go/oops"

	"github.com/koljamaier/aws-dwh/config/stackconfig"
	"github.com/koljamaier/aws-dwh/lambdafunctions/util"
	"github.com/koljamaier/aws-dwh/stepfunctions/pipeline"
	"github.com/koljamaier/aws-dwh/terraform/awsresource"
	"github.com/koljamaier/aws-dwh/terraform/dwhresource"
	"github.com/koljamaier/aws-dwh/terraform/policy"
	"github.com/koljamaier/aws-dwh/terraform/project"
	"github.com/koljamaier/aws-dwh/terraform/tf"
)

const (
	DWHProjectName     = "dwh"
	ExampleProjectName = "example"

	TriggerCrawlerFunctionName = "trigger_glue_crawler"
	QualityCheckFunctionName   = "quality_check_athena"
)

// Artifacts are the build outputs the projects upload.
type Artifacts struct {
	// LambdaZips maps a function name to its deployment package.
	LambdaZips  map[string][]byte
	SparkScript []byte
}

// Lambdas lists the functions the stack deploys for cfg, none when the
// pipeline has no post-processing.
func Lambdas(cfg stackconfig.StackConfig) []*dwhresource.GoLambdaFunction {
	if !cfg.Pipeline.PostProcessing {
		return nil
	}
	return []*dwhresource.GoLambdaFunction{
		{
			Name:           TriggerCrawlerFunctionName,
			MainFile:       "lambdafunctions/dwh/triggercrawler/main.go",
			Region:         cfg.Region,
			TimeoutSeconds: cfg.Lambdas.TimeoutSeconds,
			MemorySizeInMB: cfg.Lambdas.MemorySizeInMB,
			Environment: map[string]string{
				util.CrawlerNameEnv: cfg.CrawlerName(),
			},
			ExtraPolicyStatements: []policy.AWSPolicyStatement{
				{
					Effect:   "Allow",
					Action:   []string{"glue:StartCrawler"},
					Resource: []string{"*"},
				},
			},
			Tags: map[string]string{"dwh:service": TriggerCrawlerFunctionName},
		},
		{
			Name:           QualityCheckFunctionName,
			MainFile:       "lambdafunctions/dwh/qualitycheck/main.go",
			Region:         cfg.Region,
			TimeoutSeconds: cfg.Lambdas.TimeoutSeconds,
			MemorySizeInMB: cfg.Lambdas.MemorySizeInMB,
			Environment: map[string]string{
				util.AthenaDatabaseEnv: cfg.Glue.Database,
			},
			ManagedPolicyArns: []string{
				policy.ManagedPolicyArn("AmazonS3FullAccess"),
				policy.ManagedPolicyArn("AmazonAthenaFullAccess"),
			},
			Tags: map[string]string{"dwh:service": QualityCheckFunctionName},
		},
	}
}

// AllProjects returns every project of the stack, sorted by name.
func AllProjects(cfg stackconfig.StackConfig, artifacts Artifacts) ([]*project.Project, error) {
	dwh, err := DWHProject(cfg, artifacts)
	if err != nil {
		return nil, err
	}
	projects := []*project.Project{dwh, ExampleProject(cfg)}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func DWHProject(cfg stackconfig.StackConfig, artifacts Artifacts) (*project.Project, error) {
	if err := cfg.Validate(); err != nil {
		return nil, oops.Wrapf(err, "stack config")
	}

	p := &project.Project{
		Name:       DWHProjectName,
		Class:      cfg.Variant,
		Region:     cfg.Region,
		ExtraFiles: make(map[string]*project.ExtraFile),
	}

	buckets := map[string]dwhresource.Bucket{
		"data":           {Name: cfg.Buckets.Data, Region: cfg.Region, PreventDestroy: true},
		"logs":           {Name: cfg.Buckets.Logs, Region: cfg.Region},
		"athena_results": {Name: cfg.Buckets.AthenaResults, Region: cfg.Region},
		"artifacts":      {Name: cfg.Buckets.Artifacts, Region: cfg.Region, ForceDestroy: true},
	}
	var storage []tf.Resource
	for _, key := range []string{"data", "logs", "athena_results", "artifacts"} {
		storage = append(storage, buckets[key].Resources()...)
	}
	artifactBucket := buckets["artifacts"].Bucket()

	if len(artifacts.SparkScript) == 0 {
		return nil, oops.Errorf("spark script %s is empty", cfg.EMR.SparkScript)
	}
	scriptPath, scriptFile, scriptObject, err := dwhresource.ArtifactObject(artifactBucket, dwhresource.Artifact{
		Path:     cfg.EMR.SparkScript,
		Contents: artifacts.SparkScript,
	})
	if err != nil {
		return nil, oops.Wrapf(err, "spark script")
	}
	p.ExtraFiles[scriptPath] = scriptFile
	storage = append(storage, scriptObject)

	profile, iam := dwhresource.EMRInstanceRole(cfg.Pipeline.Name)
	serviceRole, serviceRoleResources := dwhresource.EMRServiceRole(cfg.Pipeline.Name)
	iam = append(iam, serviceRoleResources...)

	groups := map[string][]tf.Resource{
		"storage": storage,
		"glue":    glueResources(cfg, buckets["data"]),
	}

	pipelineCfg := pipeline.Config{
		Name:              cfg.Pipeline.Name,
		LogBucket:         cfg.Buckets.Logs,
		ReleaseLabel:      cfg.EMR.ReleaseLabel,
		InstanceType:      cfg.EMR.InstanceType,
		CoreInstanceCount: cfg.EMR.CoreInstanceCount,
		ServiceRole:       serviceRole.ResourceId().ReferenceAttr("name"),
		JobFlowRole:       profile.ResourceId().ReferenceAttr("name"),
		SparkScript:       dwhresource.S3URI(artifactBucket, scriptObject),
		SparkArgs:         []string{cfg.ETL.Input, cfg.ETL.Output},
		TerminateCluster:  cfg.Pipeline.TerminateCluster,
	}

	for _, fn := range Lambdas(cfg) {
		zip, ok := artifacts.LambdaZips[fn.Name]
		if !ok {
			return nil, oops.Errorf("no deployment package for lambda %s", fn.Name)
		}
		files, resources, err := fn.FilesAndResources(artifactBucket, zip)
		if err != nil {
			return nil, err
		}
		for name, f := range files {
			p.ExtraFiles[name] = f
		}
		groups["lambda_"+fn.Name] = resources

		switch fn.Name {
		case TriggerCrawlerFunctionName:
			pipelineCfg.TriggerCrawlerFunctionArn = fn.Arn()
		case QualityCheckFunctionName:
			pipelineCfg.QualityCheckFunctionArn = fn.Arn()
		}
	}

	definition, err := pipeline.Build(pipelineCfg)
	if err != nil {
		return nil, err
	}
	asl, err := definition.MarshalIndentJSON()
	if err != nil {
		return nil, err
	}

	sfnRoleId, sfnRoleResources := stepFunctionRole(cfg)
	iam = append(iam, sfnRoleResources...)
	groups["iam"] = iam
	groups["pipeline"] = []tf.Resource{
		&awsresource.SFNStateMachine{
			ResourceName: "pipeline",
			Name:         cfg.StateMachineName(),
			RoleArn:      sfnRoleId.ReferenceAttr("arn"),
			Definition:   string(asl),
			Tags:         map[string]string{"dwh:service": cfg.StateMachineName()},
		},
	}

	p.ResourceGroups = project.MergeResourceGroups(
		groups,
		map[string][]tf.Resource{
			"aws_provider": project.AWSProvider(p),
			"tf_backend":   project.TerraformBackend(p),
		},
	)
	return p, nil
}

func glueResources(cfg stackconfig.StackConfig, data dwhresource.Bucket) []tf.Resource {
	location := fmt.Sprintf("s3://%s/", data.Name)
	database := &awsresource.GlueCatalogDatabase{
		ResourceName: cfg.Glue.Database,
		Name:         cfg.Glue.Database,
		LocationUri:  location,
		Description:  "Tables inferred from the ETL output",
	}

	roleId, resources := dwhresource.GlueCrawlerRole(cfg.CrawlerName())
	crawler := &awsresource.GlueCrawler{
		ResourceName: "crawler",
		Name:         cfg.CrawlerName(),
		// The database id is its catalog id and name joined by a colon, so
		// reference the name attribute to order creation.
		DatabaseName: database.ResourceId().ReferenceAttr("name"),
		Role:         roleId.ReferenceAttr("arn"),
		Schedule:     cfg.Glue.CrawlerSchedule,
		S3Targets: []awsresource.GlueCrawlerS3Target{
			{Path: location, Exclusions: cfg.Glue.CrawlerExclusions},
		},
		Tags: map[string]string{"dwh:service": cfg.CrawlerName()},
	}
	return append([]tf.Resource{database, crawler}, resources...)
}
