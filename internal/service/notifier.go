package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/logger"
)

// maxNotices bounds the notices a session keeps for clients to render.
const maxNotices = 10

// Notifier delivers a short user-facing acknowledgment. Delivery is
// fire-and-forget; implementations log their own failures.
type Notifier interface {
	Notify(ctx context.Context, sessionID, message string)
}

// LogNotifier writes notices to the log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs at info level.
func NewLogNotifier(l *slog.Logger) *LogNotifier {
	if l == nil {
		l = slog.Default()
	}
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) Notify(ctx context.Context, sessionID, message string) {
	logger.WithContext(ctx, n.logger).InfoContext(ctx, "notice",
		slog.String("session_id", sessionID),
		slog.String("message", message),
	)
}

// Notice is one acknowledgment kept on the session.
type Notice struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// EventPublisher emits domain events. Errors are logged and counted by the
// caller, never returned to the shopper.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error
	PublishOrderPlaced(ctx context.Context, sessionID string, r checkout.Receipt) error
}

type nopEvents struct{}

func (nopEvents) PublishCartUpdated(context.Context, string, domain.Cart) error { return nil }

func (nopEvents) PublishOrderPlaced(context.Context, string, checkout.Receipt) error { return nil }
