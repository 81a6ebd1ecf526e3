/*
triggercrawler starts the glue crawler named by the crawlerName environment
variable. The input is ignored so the state machine can pass anything.

output:
{
	"crawler_name": string,
	"started": bool
}
*/

package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/glue"
	"github.com/samsarahq/go/oops"

	"github.com/koljamaier/aws-dwh/crawler"
	"github.com/koljamaier/aws-dwh/lambdafunctions/util"
	"github.com/koljamaier/aws-dwh/lambdafunctions/util/middleware"
)

var glueClient = glue.New(session.New(util.AWSConfig("")))

type TriggerCrawlerOutput struct {
	CrawlerName string `json:"crawler_name"`
	Started     bool   `json:"started"`
}

func triggerCrawler(ctx context.Context, glueClient crawler.GlueAPI) (*TriggerCrawlerOutput, error) {
	name, err := util.RequireEnv(util.CrawlerNameEnv)
	if err != nil {
		return nil, err
	}
	if err := crawler.New(glueClient).Start(ctx, name); err != nil {
		return nil, oops.Wrapf(err, "trigger crawler")
	}
	middleware.LoggerFrom(ctx).WithField("crawlerName", name).Info("crawler started")
	return &TriggerCrawlerOutput{CrawlerName: name, Started: true}, nil
}

func HandleRequest(ctx context.Context, _ json.RawMessage) (*TriggerCrawlerOutput, error) {
	return triggerCrawler(ctx, glueClient)
}

func main() {
	middleware.StartWrapped(HandleRequest, middleware.LogInputOutput)
}
