// Package stackconfig holds the single parameterized definition of the
// data warehouse stack. Named variants replace per-variant stack copies.
package stackconfig

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/samsarahq/go/oops"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRegion  = "us-west-2"
	DefaultStack   = "aws-dwh"
	DefaultVariant = "EMRSparkifyDWH"
	TestVariant    = "EmrTest"
)

// Artist data is what the crawler registers from the ETL output.
const QualityCheckTable = "artist_data"

type StackConfig struct {
	Variant string `yaml:"variant"`
	Stack   string `yaml:"stack"`
	Region  string `yaml:"region"`

	Pipeline PipelineConfig `yaml:"pipeline"`
	Buckets  BucketsConfig  `yaml:"buckets"`
	Glue     GlueConfig     `yaml:"glue"`
	EMR      EMRConfig      `yaml:"emr"`
	Lambdas  LambdasConfig  `yaml:"lambdas"`
	ETL      ETLConfig      `yaml:"etl"`
}

type PipelineConfig struct {
	Name string `yaml:"name"`

	// TerminateCluster appends the terminate step after the spark job.
	TerminateCluster bool `yaml:"terminate_cluster"`

	// PostProcessing appends the crawler trigger and quality check lambdas.
	PostProcessing bool `yaml:"post_processing"`

	// GranularPolicy replaces the managed EMR and Step Functions policies
	// on the state machine role with scoped inline statements.
	GranularPolicy bool `yaml:"granular_sfn_policy"`
}

type BucketsConfig struct {
	Data          string `yaml:"data"`
	Logs          string `yaml:"logs"`
	AthenaResults string `yaml:"athena_results"`
	Artifacts     string `yaml:"artifacts"`
}

type GlueConfig struct {
	Database          string   `yaml:"database"`
	CrawlerExclusions []string `yaml:"crawler_exclusions"`
	CrawlerSchedule   string   `yaml:"crawler_schedule"`
}

type EMRConfig struct {
	ReleaseLabel      string `yaml:"release_label"`
	InstanceType      string `yaml:"instance_type"`
	CoreInstanceCount int    `yaml:"core_instance_count"`

	// SparkScript is the local path of the job uploaded as the step's script.
	SparkScript string `yaml:"spark_script"`
}

type LambdasConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MemorySizeInMB int `yaml:"memory_size_mb"`
}

type ETLConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

func defaultVariant() StackConfig {
	return StackConfig{
		Variant: DefaultVariant,
		Stack:   DefaultStack,
		Region:  DefaultRegion,
		Pipeline: PipelineConfig{
			Name:             DefaultVariant,
			TerminateCluster: true,
			PostProcessing:   true,
		},
		Buckets: BucketsConfig{
			Data:          "capstone-uda-data1",
			Logs:          "emr-logs-udacity-final-project",
			AthenaResults: "athena-query-results-udacc",
			Artifacts:     "aws-dwh-deployed-artifacts",
		},
		Glue: GlueConfig{
			Database: "dwh_udacity_capstone",
		},
		EMR: EMRConfig{
			ReleaseLabel:      "emr-6.0.0",
			InstanceType:      "m5.xlarge",
			CoreInstanceCount: 2,
			SparkScript:       "pyspark/etl.py",
		},
		Lambdas: LambdasConfig{
			TimeoutSeconds: 30,
			MemorySizeInMB: 128,
		},
		ETL: ETLConfig{
			Input:  "s3a://udacity-dend/",
			Output: "s3a://spark-output-1337/",
		},
	}
}

var variants = map[string]func() StackConfig{
	DefaultVariant: defaultVariant,
	TestVariant: func() StackConfig {
		c := defaultVariant()
		c.Variant = TestVariant
		c.Pipeline = PipelineConfig{
			Name:           TestVariant,
			GranularPolicy: true,
		}
		c.Glue.CrawlerExclusions = []string{"**"}
		return c
	},
}

// Default returns the full pipeline: cluster lifecycle plus post-processing.
func Default() StackConfig {
	return defaultVariant()
}

// Variants lists the built-in variant names.
func Variants() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForVariant returns the built-in config of a named variant.
func ForVariant(name string) (StackConfig, error) {
	build, ok := variants[name]
	if !ok {
		return StackConfig{}, oops.Errorf("unknown variant %q, expected one of %v", name, Variants())
	}
	return build(), nil
}

// Parse decodes YAML on top of the variant it names (the default variant when unset).
func Parse(raw []byte) (StackConfig, error) {
	var head struct {
		Variant string `yaml:"variant"`
	}
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return StackConfig{}, oops.Wrapf(err, "decode variant")
	}
	if head.Variant == "" {
		head.Variant = DefaultVariant
	}

	cfg, err := ForVariant(head.Variant)
	if err != nil {
		return StackConfig{}, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return StackConfig{}, oops.Wrapf(err, "decode stack config")
	}
	if err := cfg.Validate(); err != nil {
		return StackConfig{}, err
	}
	return cfg, nil
}

// Load reads a YAML file. An empty path yields the default variant.
func Load(path string) (StackConfig, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return StackConfig{}, oops.Wrapf(err, "read %s", path)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return StackConfig{}, oops.Wrapf(err, "load %s", path)
	}
	return cfg, nil
}

var bucketNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// Validate reports every invalid field at once. Items are plain errors so the
// list stays readable; callers wrap the result.
func (c StackConfig) Validate() error {
	var errs *multierror.Error
	required := func(field, value string) {
		if value == "" {
			errs = multierror.Append(errs, fmt.Errorf("%s is required", field))
		}
	}

	required("stack", c.Stack)
	required("region", c.Region)
	required("pipeline.name", c.Pipeline.Name)
	required("glue.database", c.Glue.Database)
	required("emr.release_label", c.EMR.ReleaseLabel)
	required("emr.instance_type", c.EMR.InstanceType)
	required("emr.spark_script", c.EMR.SparkScript)
	required("etl.input", c.ETL.Input)
	required("etl.output", c.ETL.Output)

	for field, name := range map[string]string{
		"buckets.data":           c.Buckets.Data,
		"buckets.logs":           c.Buckets.Logs,
		"buckets.athena_results": c.Buckets.AthenaResults,
		"buckets.artifacts":      c.Buckets.Artifacts,
	} {
		if !bucketNameRe.MatchString(name) {
			errs = multierror.Append(errs, fmt.Errorf("%s: invalid bucket name %q", field, name))
		}
	}

	if c.EMR.CoreInstanceCount < 1 {
		errs = multierror.Append(errs, fmt.Errorf("emr.core_instance_count must be at least 1, got %d", c.EMR.CoreInstanceCount))
	}
	if c.Lambdas.TimeoutSeconds <= 0 || c.Lambdas.TimeoutSeconds > 900 {
		errs = multierror.Append(errs, fmt.Errorf("lambdas.timeout_seconds must be in (0, 900], got %d", c.Lambdas.TimeoutSeconds))
	}
	if c.Lambdas.MemorySizeInMB < 128 {
		errs = multierror.Append(errs, fmt.Errorf("lambdas.memory_size_mb must be at least 128, got %d", c.Lambdas.MemorySizeInMB))
	}
	if c.Pipeline.PostProcessing && !c.Pipeline.TerminateCluster {
		errs = multierror.Append(errs, fmt.Errorf("pipeline.post_processing requires pipeline.terminate_cluster"))
	}

	if errs != nil {
		errs.ErrorFormat = listErrors
	}
	return errs.ErrorOrNil()
}

func listErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	sort.Strings(msgs)
	out := fmt.Sprintf("%d invalid stack config field(s):", len(msgs))
	for _, m := range msgs {
		out += "\n\t* " + m
	}
	return out
}

// StateMachineName is the registered name of the pipeline.
func (c StackConfig) StateMachineName() string {
	return fmt.Sprintf("%s-%s", c.Stack, c.Pipeline.Name)
}

// CrawlerName is derived from the catalog database.
func (c StackConfig) CrawlerName() string {
	return c.Glue.Database + "-crawl"
}

// AthenaOutputLocation is where query results are written.
func (c StackConfig) AthenaOutputLocation() string {
	return fmt.Sprintf("s3://%s/", c.Buckets.AthenaResults)
}
