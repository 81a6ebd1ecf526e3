/*
qualitycheck counts artists without a name in the athenaDatabase database
and returns the verdict as a plain JSON string.

output:
	"quality check passed" | "quality check not passed"
*/

package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/sirupsen/logrus"

	"github.com/koljamaier/aws-dwh/lambdafunctions/util"
	"github.com/koljamaier/aws-dwh/lambdafunctions/util/middleware"
	"github.com/koljamaier/aws-dwh/qualitycheck"
)

// OutputLocation is where athena writes query results.
const OutputLocation = "s3://athena-query-results-udacc/"

var athenaClient = athena.New(session.New(util.AWSConfig("")))

func runQualityCheck(ctx context.Context, athenaClient qualitycheck.AthenaAPI) (string, error) {
	database, err := util.RequireEnv(util.AthenaDatabaseEnv)
	if err != nil {
		return "", err
	}
	engine := qualitycheck.NewAthenaEngine(athenaClient, database, OutputLocation)
	verdict, err := qualitycheck.NewChecker(engine, database).Check(ctx)
	if err != nil {
		return "", err
	}
	middleware.LoggerFrom(ctx).WithFields(logrus.Fields{"database": database, "verdict": verdict}).Info("quality check finished")
	return verdict, nil
}

func HandleRequest(ctx context.Context, _ json.RawMessage) (string, error) {
	return runQualityCheck(ctx, athenaClient)
}

func main() {
	middleware.StartWrapped(HandleRequest, middleware.LogInputOutput)
}
