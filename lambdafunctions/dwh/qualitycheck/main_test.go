package main

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koljamaier/aws-dwh/lambdafunctions/util"
	"github.com/koljamaier/aws-dwh/qualitycheck"
	"github.com/koljamaier/aws-dwh/vendormocks/mock_qualitycheck"
)

func TestRunQualityCheck(t *testing.T) {
	testCases := map[string]struct {
		count    string
		expected string
	}{
		"noNulls":   {count: "0", expected: qualitycheck.Passed},
		"someNulls": {count: "42", expected: qualitycheck.NotPassed},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(util.AthenaDatabaseEnv, "dwh_udacity_capstone")
			ctx := context.Background()

			client := mock_qualitycheck.NewMockAthenaAPI(gomock.NewController(t))
			client.EXPECT().StartQueryExecutionWithContext(ctx, gomock.Any()).Return(&athena.StartQueryExecutionOutput{
				QueryExecutionId: aws.String("q-1"),
			}, nil).Do(func(ctx aws.Context, input *athena.StartQueryExecutionInput, opts ...request.Option) {
				assert.Equal(t, qualitycheck.Query("dwh_udacity_capstone"), aws.StringValue(input.QueryString))
				assert.Equal(t, OutputLocation, aws.StringValue(input.ResultConfiguration.OutputLocation))
			})
			client.EXPECT().GetQueryExecutionWithContext(ctx, gomock.Any()).Return(&athena.GetQueryExecutionOutput{
				QueryExecution: &athena.QueryExecution{Status: &athena.QueryExecutionStatus{
					State: aws.String(athena.QueryExecutionStateSucceeded),
				}},
			}, nil)
			client.EXPECT().GetQueryResultsWithContext(ctx, gomock.Any()).Return(&athena.GetQueryResultsOutput{
				ResultSet: &athena.ResultSet{Rows: []*athena.Row{
					{Data: []*athena.Datum{{VarCharValue: aws.String("cnt")}}},
					{Data: []*athena.Datum{{VarCharValue: aws.String(tc.count)}}},
				}},
			}, nil)

			verdict, err := runQualityCheck(ctx, client)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, verdict)
		})
	}
}

func TestRunQualityCheckWithoutDatabase(t *testing.T) {
	t.Setenv(util.AthenaDatabaseEnv, "")
	client := mock_qualitycheck.NewMockAthenaAPI(gomock.NewController(t))

	_, err := runQualityCheck(context.Background(), client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "athenaDatabase must be set")
}
