package middleware

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/samsarahq/go/oops"
	"github.com/sirupsen/logrus"
)

// LambdaMiddleware runs around a function's handler. Enter may replace the
// context and payload, and an Enter error is returned without calling the
// handler. Exit sees the handler's result and may replace it.
type LambdaMiddleware struct {
	Enter func(context.Context, []byte) (context.Context, []byte, error)
	Exit  func(context.Context, []byte, error) ([]byte, error)
}

type loggerKey struct{}

// LoggerFrom returns the invocation's logger. Under Lambda it carries the
// request id and the function ARN, so handler logs line up with the
// input and output entries.
func LoggerFrom(ctx context.Context) logrus.FieldLogger {
	if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return Logger
}

func withRequestLogger(ctx context.Context) context.Context {
	if _, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return ctx
	}
	fields := logrus.Fields{}
	if lambdacontext.FunctionName != "" {
		fields["function"] = lambdacontext.FunctionName
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		fields["requestId"] = lc.AwsRequestID
		fields["functionArn"] = lc.InvokedFunctionArn
	}
	return context.WithValue(ctx, loggerKey{}, Logger.WithFields(fields))
}

type wrappedHandler struct {
	handler    lambda.Handler
	middleware LambdaMiddleware
}

func (w *wrappedHandler) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	if w.middleware.Enter != nil {
		enteredCtx, enteredPayload, err := w.middleware.Enter(ctx, payload)
		if err != nil {
			return enteredPayload, oops.Wrapf(err, "middleware error")
		}
		ctx, payload = enteredCtx, enteredPayload
	}

	out, err := w.handler.Invoke(ctx, payload)
	if w.middleware.Exit == nil {
		return out, err
	}
	return w.middleware.Exit(ctx, out, err)
}

// requestHandler is the outermost layer. It scopes the logger to the
// invocation before any middleware runs.
type requestHandler struct {
	next lambda.Handler
}

func (r *requestHandler) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	return r.next.Invoke(withRequestLogger(ctx), payload)
}

// WrapNewHandler builds a lambda.Handler from handlerFunc. The last
// middleware listed is the outermost and its Enter runs first.
func WrapNewHandler(handlerFunc interface{}, middleware ...LambdaMiddleware) lambda.Handler {
	h := lambda.NewHandler(handlerFunc)
	for _, mw := range middleware {
		h = &wrappedHandler{handler: h, middleware: mw}
	}
	return &requestHandler{next: h}
}

// StartWrapped starts the function with the given middleware.
func StartWrapped(handlerFunc interface{}, middleware ...LambdaMiddleware) {
	lambda.StartHandler(WrapNewHandler(handlerFunc, middleware...))
}
