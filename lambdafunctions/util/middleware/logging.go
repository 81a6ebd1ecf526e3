package middleware

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is shared by the functions; CloudWatch ingests one JSON object per line.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		l.SetLevel(level)
	}
	return l
}

// environment returns the function's environment, skipping AWS credentials.
func environment() map[string]string {
	env := make(map[string]string)
	for _, envvar := range os.Environ() {
		parts := strings.SplitN(envvar, "=", 2)
		if strings.HasPrefix(parts[0], "AWS_SECRET") || strings.HasPrefix(parts[0], "AWS_SESSION") {
			continue
		}
		switch len(parts) {
		case 2:
			env[parts[0]] = parts[1]
		case 1:
			env[parts[0]] = ""
		}
	}
	return env
}

func logLambdaInputs(ctx context.Context, input []byte) (context.Context, []byte, error) {
	LoggerFrom(ctx).WithFields(logrus.Fields{
		"environment": environment(),
		"input":       string(input),
	}).Info("lambda input")
	return ctx, input, nil
}

func logLambdaOutputs(ctx context.Context, output []byte, outErr error) ([]byte, error) {
	entry := LoggerFrom(ctx).WithField("output", string(output))
	if outErr != nil {
		entry.WithError(outErr).Error("lambda failed")
		return output, outErr
	}
	entry.Info("lambda output")
	return output, nil
}

// LogInputOutput logs the environment and payload on the way in, and the
// response payload and any error on the way out, under the request's logger.
var LogInputOutput = LambdaMiddleware{
	Enter: logLambdaInputs,
	Exit:  logLambdaOutputs,
}
