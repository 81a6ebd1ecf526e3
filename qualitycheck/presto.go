package qualitycheck

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/prestodb/presto-go-client/presto"
	"github.com/samsarahq/go/oops"
)

// PrestoEngine runs the check against a Presto or Trino coordinator that
// reads the same glue catalog, e.g. a local one during development.
type PrestoEngine struct {
	db *sql.DB
}

var _ QueryEngine = (*PrestoEngine)(nil)

// OpenPresto connects with a presto driver DSN such as
// http://user@localhost:8080?catalog=hive&schema=default.
func OpenPresto(dsn string) (*PrestoEngine, error) {
	db, err := sql.Open("presto", dsn)
	if err != nil {
		return nil, oops.Wrapf(err, "error opening presto connection")
	}
	return NewPrestoEngine(db), nil
}

func NewPrestoEngine(db *sql.DB) *PrestoEngine {
	return &PrestoEngine{db: db}
}

func (e *PrestoEngine) Count(ctx context.Context, query string) (string, error) {
	// The presto driver rejects a trailing statement terminator.
	query = strings.TrimSuffix(strings.TrimSpace(query), ";")

	var value sql.NullString
	if err := e.db.QueryRowContext(ctx, query).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", oops.Errorf("presto query returned no data rows")
		}
		return "", oops.Wrapf(err, "error running presto query")
	}
	if !value.Valid {
		return "", oops.Errorf("presto query returned a null first column")
	}
	return value.String, nil
}

func (e *PrestoEngine) Close() error {
	return e.db.Close()
}
