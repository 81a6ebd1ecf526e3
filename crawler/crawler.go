// Package crawler starts the glue crawler that catalogs the ETL output.
package crawler

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/glue"
	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=../vendormocks/mock_crawler/mock_crawler.go -package=mock_crawler github.com/koljamaier/aws-dwh/crawler GlueAPI

// GlueAPI is the subset of glueiface.GlueAPI the starter calls.
type GlueAPI interface {
	StartCrawlerWithContext(ctx aws.Context, input *glue.StartCrawlerInput, opts ...request.Option) (*glue.StartCrawlerOutput, error)
}

type Starter struct {
	glueClient GlueAPI
}

func New(glueClient GlueAPI) *Starter {
	return &Starter{glueClient: glueClient}
}

// Start asks glue to run the crawler once. It does not wait for the crawl.
func (s *Starter) Start(ctx context.Context, name string) error {
	if name == "" {
		return oops.Errorf("crawler name is required")
	}

	if _, err := s.glueClient.StartCrawlerWithContext(ctx, &glue.StartCrawlerInput{
		Name: aws.String(name),
	}); err != nil {
		logrus.WithField("crawler", name).WithError(err).Error("failed to start crawler")
		return oops.Wrapf(err, "error starting crawler %s", name)
	}

	logrus.WithField("crawler", name).Info("crawler started")
	return nil
}
