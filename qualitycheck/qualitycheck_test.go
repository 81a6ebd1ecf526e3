package qualitycheck

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	value string
	err   error
	query string
}

func (f *fakeEngine) Count(ctx context.Context, query string) (string, error) {
	f.query = query
	return f.value, f.err
}

func TestCheck(t *testing.T) {
	testCases := map[string]struct {
		database      string
		value         string
		engineErr     error
		expected      string
		errorExpected string
	}{
		"noNullsPasses": {
			database: "dwh_udacity_capstone",
			value:    "0",
			expected: Passed,
		},
		"nullsFail": {
			database: "dwh_udacity_capstone",
			value:    "17",
			expected: NotPassed,
		},
		"paddedZeroFails": {
			database: "dwh_udacity_capstone",
			value:    "00",
			expected: NotPassed,
		},
		"nonNumericFails": {
			database: "dwh_udacity_capstone",
			value:    "zero",
			expected: NotPassed,
		},
		"emptyCountFails": {
			database: "dwh_udacity_capstone",
			value:    "",
			expected: NotPassed,
		},
		"engineFails": {
			database:      "dwh_udacity_capstone",
			engineErr:     errors.New("table not found"),
			errorExpected: "table not found",
		},
		"noDatabase": {
			errorExpected: "database is required",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			engine := &fakeEngine{value: tc.value, err: tc.engineErr}
			verdict, err := NewChecker(engine, tc.database).Check(context.Background())
			if tc.errorExpected != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorExpected)
				assert.Empty(t, verdict)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, verdict)
			assert.Equal(t, `SELECT COUNT(1) as cnt FROM "dwh_udacity_capstone"."artist_data" WHERE name IS NULL;`, engine.query)
		})
	}
}
