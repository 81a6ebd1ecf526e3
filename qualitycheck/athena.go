package qualitycheck

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=../vendormocks/mock_qualitycheck/mock_qualitycheck.go -package=mock_qualitycheck github.com/koljamaier/aws-dwh/qualitycheck AthenaAPI

// AthenaAPI is the subset of athenaiface.AthenaAPI the engine calls.
type AthenaAPI interface {
	StartQueryExecutionWithContext(ctx aws.Context, input *athena.StartQueryExecutionInput, opts ...request.Option) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecutionWithContext(ctx aws.Context, input *athena.GetQueryExecutionInput, opts ...request.Option) (*athena.GetQueryExecutionOutput, error)
	GetQueryResultsWithContext(ctx aws.Context, input *athena.GetQueryResultsInput, opts ...request.Option) (*athena.GetQueryResultsOutput, error)
}

type AthenaEngine struct {
	athenaClient   AthenaAPI
	database       string
	outputLocation string
	clock          clock.Clock

	// PollInterval bounds the wait between status checks.
	PollInterval backoff.Backoff
	// MaxWait gives up on a query still running after this long. Zero
	// leaves the deadline to ctx.
	MaxWait time.Duration
}

var _ QueryEngine = (*AthenaEngine)(nil)

func NewAthenaEngine(athenaClient AthenaAPI, database string, outputLocation string) *AthenaEngine {
	return &AthenaEngine{
		athenaClient:   athenaClient,
		database:       database,
		outputLocation: outputLocation,
		clock:          clock.New(),
		PollInterval: backoff.Backoff{
			Min:    200 * time.Millisecond,
			Max:    2 * time.Second,
			Factor: 2,
			Jitter: true,
		},
	}
}

func (e *AthenaEngine) Count(ctx context.Context, query string) (string, error) {
	started, err := e.athenaClient.StartQueryExecutionWithContext(ctx, &athena.StartQueryExecutionInput{
		ClientRequestToken: aws.String(uuid.New().String()),
		QueryString:        aws.String(query),
		QueryExecutionContext: &athena.QueryExecutionContext{
			Database: aws.String(e.database),
		},
		ResultConfiguration: &athena.ResultConfiguration{
			OutputLocation: aws.String(e.outputLocation),
		},
	})
	if err != nil {
		return "", oops.Wrapf(err, "error starting athena query")
	}
	queryExecutionId := aws.StringValue(started.QueryExecutionId)
	log := logrus.WithField("queryExecutionId", queryExecutionId)
	log.Info("athena query started")

	if err := e.waitForQuery(ctx, queryExecutionId); err != nil {
		return "", err
	}

	results, err := e.athenaClient.GetQueryResultsWithContext(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(queryExecutionId),
	})
	if err != nil {
		return "", oops.Wrapf(err, "error fetching results of athena query %s", queryExecutionId)
	}

	// Row 0 holds the column headers.
	if results.ResultSet == nil || len(results.ResultSet.Rows) < 2 {
		return "", oops.Errorf("athena query %s returned no data rows", queryExecutionId)
	}
	row := results.ResultSet.Rows[1]
	if len(row.Data) == 0 || row.Data[0].VarCharValue == nil {
		return "", oops.Errorf("athena query %s returned an empty first column", queryExecutionId)
	}
	value := aws.StringValue(row.Data[0].VarCharValue)
	log.WithField("value", value).Info("athena query finished")
	return value, nil
}

func (e *AthenaEngine) waitForQuery(ctx context.Context, queryExecutionId string) error {
	poll := e.PollInterval
	deadline := time.Time{}
	if e.MaxWait > 0 {
		deadline = e.clock.Now().Add(e.MaxWait)
	}

	for {
		out, err := e.athenaClient.GetQueryExecutionWithContext(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(queryExecutionId),
		})
		if err != nil {
			return oops.Wrapf(err, "error getting status of athena query %s", queryExecutionId)
		}

		var state, reason string
		if out.QueryExecution != nil && out.QueryExecution.Status != nil {
			state = aws.StringValue(out.QueryExecution.Status.State)
			reason = aws.StringValue(out.QueryExecution.Status.StateChangeReason)
		}
		switch state {
		case athena.QueryExecutionStateSucceeded:
			return nil
		case athena.QueryExecutionStateFailed, athena.QueryExecutionStateCancelled:
			return oops.Errorf("athena query %s %s: %s", queryExecutionId, state, reason)
		}

		if !deadline.IsZero() && !e.clock.Now().Before(deadline) {
			return oops.Errorf("athena query %s still %s after %s", queryExecutionId, state, e.MaxWait)
		}

		select {
		case <-e.clock.After(poll.Duration()):
		case <-ctx.Done():
			return oops.Wrapf(ctx.Err(), "waiting for athena query %s", queryExecutionId)
		}
	}
}
