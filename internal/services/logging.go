package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/utils"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

type LogConfig struct {
	Service string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service),
	}
}

// outcome classifies err into a status label and the level it is logged at.
// Upstream model trouble is expected traffic and stays below error level.
func outcome(err error) (string, slog.Level) {
	switch {
	case err == nil:
		return "success", slog.LevelInfo
	case IsValidation(err):
		return "validation_error", slog.LevelWarn
	case IsUnauthorized(err):
		return "unauthorized", slog.LevelWarn
	case IsNotFound(err):
		return "not_found", slog.LevelInfo
	case errors.Is(err, ErrStaleResponse):
		return "superseded", slog.LevelDebug
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrEmptyResult), errors.Is(err, ErrEmptyModelResponse):
		return "unusable_response", slog.LevelWarn
	case errors.Is(err, ErrNetworkFailure), errors.Is(err, context.DeadlineExceeded):
		return "upstream_unavailable", slog.LevelWarn
	case IsUpstream(err):
		return "upstream_error", slog.LevelWarn
	case errors.Is(err, context.Canceled):
		return "canceled", slog.LevelInfo
	}
	return "error", slog.LevelError
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, username string, resourceID string, resourceType string, duration time.Duration, err error) {
	status, level := outcome(err)

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("username", username),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if resourceID != "" {
		attrs = append(attrs, slog.String("resource_id", resourceID))
	}
	if resourceType != "" {
		attrs = append(attrs, slog.String("resource_type", resourceType))
	}
	if requestID := utils.RequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErrs ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make([]string, 0, len(validationErrs))
			for _, v := range validationErrs {
				fields = append(fields, v.Field)
			}
			attrs = append(attrs, slog.Any("invalid_fields", fields))
		}
	}

	l.logger.LogAttrs(ctx, level, operation+" "+status, attrs...)
}

// ===== CONTEXTUAL LOGGER =====

// ContextualLogger times one operation and logs its outcome
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	username  string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string, username string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		username:  username,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID string, resourceType string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.username, resourceID, resourceType, time.Since(cl.startTime), err)
}
