package util

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAWSConfig(t *testing.T) {
	testCases := map[string]struct {
		region         string
		expectedRegion *string
	}{
		"regionFromEnvironment": {},
		"explicitRegion":        {region: "eu-central-1", expectedRegion: aws.String("eu-central-1")},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			cfg := AWSConfig(tc.region)
			assert.Equal(t, tc.expectedRegion, cfg.Region)

			retryer, ok := cfg.Retryer.(request.Retryer)
			require.True(t, ok)
			assert.Equal(t, MaxRetries, retryer.MaxRetries())
		})
	}
}

func TestAWSConfigIsNotShared(t *testing.T) {
	a := AWSConfig("us-west-2")
	b := AWSConfig("")
	assert.NotSame(t, a, b)
	assert.Nil(t, b.Region)
}
