package util

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
)

// MaxRetries bounds SDK retries for the crawler and athena clients. Athena
// throttles GetQueryExecution hard while a query is queued.
const MaxRetries = 8

// AWSConfig returns a v1 client config with the stack's retry policy. An
// empty region leaves resolution to the SDK, which reads AWS_REGION inside
// a function.
func AWSConfig(region string) *aws.Config {
	cfg := &aws.Config{
		Retryer: &client.DefaultRetryer{
			NumMaxRetries:    MaxRetries,
			MinRetryDelay:    50 * time.Millisecond,
			MinThrottleDelay: time.Second,
			MaxRetryDelay:    10 * time.Second,
			MaxThrottleDelay: 10 * time.Second,
		},
	}
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	return cfg
}
