package passcode

import (
	"context"

	"github.com/tech-arch1tect/codeauth/services/logging"
	"go.uber.org/zap"
)

// LogNotifier writes dispatched codes to the log instead of delivering them.
// The builder only wires it in development mode with mail disabled.
type LogNotifier struct {
	logger *logging.Service
}

func NewLogNotifier(logger *logging.Service) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, msg Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.logger != nil {
		n.logger.Warn("mail disabled, login code written to log",
			zap.String("identity", msg.Identity),
			zap.String("role", string(msg.Role)),
			zap.String("purpose", string(msg.Purpose)),
			zap.String("code", msg.Code),
			zap.Time("expires_at", msg.ExpiresAt))
	}
	return nil
}
