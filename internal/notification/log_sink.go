package notification

import (
	"context"

	"karmahub/internal/logger"
)

type logSink struct {
	logger logger.Logger
}

// NewLogSink creates a sink that writes notices to the log
func NewLogSink(log logger.Logger) Sink {
	return &logSink{
		logger: log.With(logger.String("component", "notification_sink")),
	}
}

func (s *logSink) Notify(ctx context.Context, userID string, notice Notice) error {
	s.logger.WithContext(ctx).Info("notice",
		logger.String("user_id", userID),
		logger.String("level", string(notice.Level)),
		logger.String("title", notice.Title),
		logger.String("message", notice.Message),
	)
	return nil
}
