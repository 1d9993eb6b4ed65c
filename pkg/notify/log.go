package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes messages to the logger. Used when no push channel is
// configured so alerts are still visible.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Name() string { return "log" }

func (l *LogNotifier) Send(_ context.Context, msg Message) error {
	l.logger.Info("notification",
		zap.Stringer("id", msg.ID),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
	)
	return nil
}
