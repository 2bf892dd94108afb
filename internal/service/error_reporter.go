package service

import (
	"context"

	"karmahub/internal/identity"
	"karmahub/internal/logger"
	"karmahub/internal/metrics"
	"karmahub/internal/notification"
)

// ErrorReporter is the error channel for failures that are not returned to the caller
type ErrorReporter interface {
	Report(ctx context.Context, view string, err error)
}

type errorReporter struct {
	sink   notification.Sink
	logger logger.Logger
}

// NewErrorReporter logs, counts and notifies the current user about degraded reads
func NewErrorReporter(sink notification.Sink, log logger.Logger) ErrorReporter {
	return &errorReporter{
		sink:   sink,
		logger: log.With(logger.String("component", "error_reporter")),
	}
}

func (r *errorReporter) Report(ctx context.Context, view string, err error) {
	r.logger.WithContext(ctx).Error("read view degraded",
		logger.String("view", view),
		logger.Error(err))

	metrics.DegradedReadsTotal.WithLabelValues(view).Inc()

	notice := notification.Failure("Could not load data", "Some entries could not be loaded. Please try again.")
	if nErr := r.sink.Notify(ctx, identity.UserFromContext(ctx), notice); nErr != nil {
		r.logger.Warn("failed to deliver error notice", logger.Error(nErr))
	}
}
