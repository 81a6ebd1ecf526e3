package cmd

import (
	"errors"
	"testing"

	"github.com/samsarahq/go/oops"
	"github.com/stretchr/testify/assert"
)

func TestGetRootCause(t *testing.T) {
	testCases := map[string]struct {
		err      error
		expected string
	}{
		"nil":   {},
		"plain": {err: errors.New("boom"), expected: "boom"},
		"oopsWrapped": {
			err:      oops.Wrapf(oops.Errorf("bucket missing"), "execution failed"),
			expected: "bucket missing",
		},
		"oopsWrappedStdlib": {
			err:      oops.Wrapf(errors.New("access denied"), "head bucket capstone-uda-data1"),
			expected: "access denied",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, getRootCause(tc.err))
		})
	}
}

func TestCommandTree(t *testing.T) {
	var paths []string
	for _, group := range Root().Commands() {
		for _, sub := range group.Commands() {
			paths = append(paths, sub.CommandPath())
		}
	}
	assert.ElementsMatch(t, []string{
		"dwhops stack synth",
		"dwhops stack deploy",
		"dwhops pipeline start",
		"dwhops pipeline quality-check",
		"dwhops pipeline simulate",
	}, paths)
}
