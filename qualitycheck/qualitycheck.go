// Package qualitycheck runs the post-load data quality query and turns
// its count into a verdict.
package qualitycheck

import (
	"context"
	"fmt"

	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"
)

const (
	Passed    = "quality check passed"
	NotPassed = "quality check not passed"

	// Table is the table whose null artist names fail the check.
	Table = "artist_data"
)

// QueryEngine runs a single-value query and returns the first column of
// the first data row as text.
type QueryEngine interface {
	Count(ctx context.Context, query string) (string, error)
}

type Checker struct {
	engine   QueryEngine
	database string
}

func NewChecker(engine QueryEngine, database string) *Checker {
	return &Checker{engine: engine, database: database}
}

// Query counts the artists without a name.
func Query(database string) string {
	return fmt.Sprintf(`SELECT COUNT(1) as cnt FROM "%s"."%s" WHERE name IS NULL;`, database, Table)
}

// Check returns Passed when the count is exactly "0" and NotPassed for
// any other value. Engine failures are errors.
func (c *Checker) Check(ctx context.Context) (string, error) {
	if c.database == "" {
		return "", oops.Errorf("quality check database is required")
	}

	raw, err := c.engine.Count(ctx, Query(c.database))
	if err != nil {
		return "", oops.Wrapf(err, "error running quality check against %s", c.database)
	}

	log := logrus.WithFields(logrus.Fields{"database": c.database, "table": Table, "count": raw})
	if raw == "0" {
		log.Info(Passed)
		return Passed, nil
	}
	log.Warn(NotPassed)
	return NotPassed, nil
}
