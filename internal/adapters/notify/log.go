package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/pulse/internal/ports/secondary"
)

// LogGateway writes notifications to the logger instead of delivering them.
// Used for local runs and dry runs.
type LogGateway struct {
	logger *zap.Logger
}

// NewLogGateway creates a gateway that logs through logger.
func NewLogGateway(logger *zap.Logger) *LogGateway {
	return &LogGateway{logger: logger.Named("notify")}
}

// Send logs n and always succeeds.
func (g *LogGateway) Send(_ context.Context, n secondary.Notification) error {
	g.logger.Info("notification",
		zap.String("to", n.To),
		zap.String("subject", n.Subject),
		zap.Int("body_len", len(n.Body)),
	)
	return nil
}

// Ensure LogGateway implements the interface
var _ secondary.NotificationGateway = (*LogGateway)(nil)
