package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier delivers a rendered alert message to its recipients.
// Delivery is best-effort; callers must not gate alert commits on it.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// LogNotifier writes alert messages to the structured log. Useful as a
// fallback when no delivery channel is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, message string) error {
	n.logger.Info("alert", zap.String("message", message))
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
