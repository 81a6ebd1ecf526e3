package middleware_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koljamaier/aws-dwh/lambdafunctions/util/middleware"
)

type testInput struct {
	InValue string `json:"in_value"`
}

type testOutput struct {
	OutValue string `json:"out_value"`
}

type traceKey string

type tracer struct {
	entries []string
}

func addTrace(ctx context.Context, trace string) (context.Context, *tracer) {
	ctxTracer := &tracer{}
	if existingTracer := ctx.Value(traceKey("trace")); existingTracer != nil {
		ctxTracer = existingTracer.(*tracer)
	}
	ctxTracer.entries = append(ctxTracer.entries, trace)
	return context.WithValue(ctx, traceKey("trace"), ctxTracer), ctxTracer
}

func handlerFunc(ctx context.Context, input *testInput) (*testOutput, error) {
	_, _ = addTrace(ctx, "handler func")
	if input.InValue == "badinput" {
		return nil, errors.New("receivedbadinput")
	}
	return &testOutput{OutValue: fmt.Sprintf("out:%s", input.InValue)}, nil
}

var testMiddleware = middleware.LambdaMiddleware{
	Enter: func(ctx context.Context, input []byte) (context.Context, []byte, error) {
		_, _ = addTrace(ctx, "enter middleware")
		if string(input) == "replaceme" {
			_, _ = addTrace(ctx, "replace input")
			return ctx, []byte(`{"in_value":"surprise"}`), nil
		}
		if string(input) == "middlebad" {
			_, _ = addTrace(ctx, "enter middleware error")
			return ctx, []byte("receivedbadmiddle"), errors.New("bad middleware")
		}
		return ctx, input, nil
	},
	Exit: func(ctx context.Context, innerOutput []byte, innerErr error) ([]byte, error) {
		_, _ = addTrace(ctx, "exit middleware")
		if innerErr != nil {
			_, _ = addTrace(ctx, "saw inner err")
			return innerOutput, innerErr
		}
		return append([]byte("!"), innerOutput...), nil
	},
}

func TestWrapNewHandler(t *testing.T) {
	testCases := map[string]struct {
		middleware     []middleware.LambdaMiddleware
		input          string
		expectedOutput string
		expectedError  string
		expectedTrace  []string
	}{
		"noMiddleware": {
			input:          `{"in_value":"stuff"}`,
			expectedOutput: `{"out_value":"out:stuff"}`,
			expectedTrace:  []string{"tracing", "handler func"},
		},
		"emptyMiddleware": {
			middleware:     []middleware.LambdaMiddleware{{}},
			input:          `{"in_value":"stuff"}`,
			expectedOutput: `{"out_value":"out:stuff"}`,
			expectedTrace:  []string{"tracing", "handler func"},
		},
		"passThrough": {
			middleware:     []middleware.LambdaMiddleware{testMiddleware},
			input:          `{"in_value":"stuff"}`,
			expectedOutput: `!{"out_value":"out:stuff"}`,
			expectedTrace:  []string{"tracing", "enter middleware", "handler func", "exit middleware"},
		},
		"replacedInput": {
			middleware:     []middleware.LambdaMiddleware{testMiddleware},
			input:          "replaceme",
			expectedOutput: `!{"out_value":"out:surprise"}`,
			expectedTrace:  []string{"tracing", "enter middleware", "replace input", "handler func", "exit middleware"},
		},
		"enterFails": {
			middleware:     []middleware.LambdaMiddleware{testMiddleware},
			input:          "middlebad",
			expectedOutput: "receivedbadmiddle",
			expectedError:  "bad middleware",
			expectedTrace:  []string{"tracing", "enter middleware", "enter middleware error"},
		},
		"handlerFails": {
			middleware:     []middleware.LambdaMiddleware{testMiddleware},
			input:          `{"in_value":"badinput"}`,
			expectedOutput: "",
			expectedError:  "receivedbadinput",
			expectedTrace:  []string{"tracing", "enter middleware", "handler func", "exit middleware", "saw inner err"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			handler := middleware.WrapNewHandler(handlerFunc, tc.middleware...)
			ctx, tracer := addTrace(context.Background(), "tracing")
			output, err := handler.Invoke(ctx, []byte(tc.input))
			if tc.expectedError != "" {
				assert.EqualError(t, oops.Cause(err), tc.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expectedOutput, string(output))
			assert.Equal(t, tc.expectedTrace, tracer.entries)
		})
	}
}

func TestLogInputOutput(t *testing.T) {
	hook := logrustest.NewLocal(middleware.Logger)
	defer hook.Reset()

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{
		AwsRequestID:       "req-1",
		InvokedFunctionArn: "arn:aws:lambda:us-west-2:123456789012:function:trigger",
	})
	handler := middleware.WrapNewHandler(handlerFunc, middleware.LogInputOutput)

	_, err := handler.Invoke(ctx, []byte(`{"in_value":"stuff"}`))
	require.NoError(t, err)
	_, err = handler.Invoke(ctx, []byte(`{"in_value":"badinput"}`))
	require.Error(t, err)

	entries := hook.AllEntries()
	require.Len(t, entries, 4)

	assert.Equal(t, "lambda input", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].Data["requestId"])
	assert.Equal(t, `{"in_value":"stuff"}`, entries[0].Data["input"])

	assert.Equal(t, "lambda output", entries[1].Message)
	assert.Equal(t, `{"out_value":"out:stuff"}`, entries[1].Data["output"])

	assert.Equal(t, "lambda failed", entries[3].Message)
	assert.Equal(t, logrus.ErrorLevel, entries[3].Level)
	assert.EqualError(t, entries[3].Data[logrus.ErrorKey].(error), "receivedbadinput")
}

func TestLoggerFromCarriesRequest(t *testing.T) {
	hook := logrustest.NewLocal(middleware.Logger)
	defer hook.Reset()

	loggingHandler := func(ctx context.Context, input *testInput) (*testOutput, error) {
		middleware.LoggerFrom(ctx).WithField("crawler", input.InValue).Info("crawler started")
		return &testOutput{OutValue: input.InValue}, nil
	}

	testCases := map[string]struct {
		ctx               context.Context
		expectedRequestId interface{}
	}{
		"underLambda": {
			ctx: lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{
				AwsRequestID:       "req-7",
				InvokedFunctionArn: "arn:aws:lambda:us-west-2:123456789012:function:trigger_glue_crawler",
			}),
			expectedRequestId: "req-7",
		},
		"noLambdaContext": {
			ctx: context.Background(),
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			hook.Reset()
			handler := middleware.WrapNewHandler(loggingHandler, middleware.LogInputOutput)
			_, err := handler.Invoke(tc.ctx, []byte(`{"in_value":"dwh_udacity_capstone-crawl"}`))
			require.NoError(t, err)

			entries := hook.AllEntries()
			require.Len(t, entries, 3)
			assert.Equal(t, "crawler started", entries[1].Message)
			for _, entry := range entries {
				assert.Equal(t, tc.expectedRequestId, entry.Data["requestId"], entry.Message)
			}
		})
	}
}

func TestLoggerFromOutsideHandler(t *testing.T) {
	assert.Equal(t, middleware.Logger, middleware.LoggerFrom(context.Background()))
}
