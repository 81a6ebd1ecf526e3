package util

import (
	"os"
	"strings"

	"github.com/samsarahq/go/oops"
)

// Environment variables set on the functions by the stack.
const (
	CrawlerNameEnv    = "crawlerName"
	AthenaDatabaseEnv = "athenaDatabase"
)

// RequireEnv returns the value of key, failing when it is unset or blank.
func RequireEnv(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", oops.Errorf("environment variable %s must be set", key)
	}
	return value, nil
}
