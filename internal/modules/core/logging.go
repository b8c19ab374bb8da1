package core

import (
	"context"
	"fmt"

	"github.com/eskrenkovic/mediator-go"

	"go.uber.org/zap"
)

var logger = zap.NewNop()

// SetLogger installs the process-wide logger used by the helpers in
// this package. Called once from the composition root.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

func LogError(ctx context.Context, msg string, fields ...zap.Field) {
	logger.Error(msg, withContextFields(ctx, fields)...)
}

func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	logger.Warn(msg, withContextFields(ctx, fields)...)
}

func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	logger.Info(msg, withContextFields(ctx, fields)...)
}

func withContextFields(ctx context.Context, fields []zap.Field) []zap.Field {
	correlationID := ctx.Value(CorrelationIDContextKey)
	if correlationID != nil && correlationID != "" {
		fields = append(fields, zap.Any("correlation_id", correlationID))
	}

	return fields
}

var _ mediator.PipelineBehavior = (*RequestLoggingBehavior)(nil)

type RequestLoggingBehavior struct {
	Logger *zap.Logger
}

func (b *RequestLoggingBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	var logFields []zap.Field

	correlationID := ctx.Value(CorrelationIDContextKey)
	if correlationID != nil && correlationID != "" {
		logFields = append(logFields, zap.Any("correlation_id", correlationID))
	}

	logFields = append(logFields, zap.String("request_type", typeName(request)))

	b.Logger.Info("processing request", logFields...)

	return next(ctx, request)
}

var _ mediator.PipelineBehavior = (*HandlerErrorLoggingBehavior)(nil)

type HandlerErrorLoggingBehavior struct {
	Logger *zap.Logger
}

func (b *HandlerErrorLoggingBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	response, err := next(ctx, request)
	if err != nil {
		if commandErr, ok := err.(CommandError); ok && commandErr.StatusCode < 500 {
			// Refusals and no-ops are expected outcomes, not errors.
			b.Logger.Info("handler refused request", zap.String("request_type", typeName(request)), zap.Error(err))
		} else {
			b.Logger.Error("handler returned error", zap.String("request_type", typeName(request)), zap.Error(err))
		}
	}

	return response, err
}

func typeName(v interface{}) string {
	if v == nil {
		return ""
	}

	return fmt.Sprintf("%T", v)
}
