package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront events.
var (
	TopicNotifications = pkgkafka.Topic("notifications")
	TopicCartUpdated   = pkgkafka.Topic("cart", "updated")
	TopicOrderPlaced   = pkgkafka.Topic("order", "placed")
)

// Event type names carried in the envelope.
const (
	TypeNotification = "notification"
	TypeCartUpdated  = "cart.updated"
	TypeOrderPlaced  = "order.placed"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// NotificationData is the payload for a notification event.
type NotificationData struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID  string          `json:"session_id"`
	Items      []CartItemData  `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// CartItemData is the item payload within cart and order events.
type CartItemData struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	SessionID  string          `json:"session_id"`
	Reference  string          `json:"reference"`
	Items      []CartItemData  `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	PlacedAt   time.Time       `json:"placed_at"`
}

// Publisher writes one event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront events. With a nil Publisher every event is
// logged at debug level and dropped, which is how the service runs without
// Kafka.
type Producer struct {
	pub    Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(pub Publisher, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{
		pub:    pub,
		logger: logger,
	}
}

// Enabled reports whether events leave the process.
func (p *Producer) Enabled() bool { return p.pub != nil }

// Notify publishes a user-facing notice. Failures are logged, never returned.
func (p *Producer) Notify(ctx context.Context, sessionID, message string) {
	data := NotificationData{SessionID: sessionID, Message: message}
	if err := p.publish(ctx, TopicNotifications, TypeNotification, sessionID, data); err != nil {
		logger.WithContext(ctx, p.logger).ErrorContext(ctx, "failed to publish notification",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error {
	data := CartUpdatedData{
		SessionID:  sessionID,
		Items:      itemData(cart.Items),
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
	}

	if err := p.publish(ctx, TopicCartUpdated, TypeCartUpdated, sessionID, data); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.Int("total_items", data.TotalItems),
	)
	return nil
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, sessionID string, r checkout.Receipt) error {
	data := OrderPlacedData{
		SessionID:  sessionID,
		Reference:  r.Reference,
		Items:      itemData(r.Items),
		TotalItems: r.TotalItems,
		TotalPrice: r.TotalPrice,
		Tax:        r.Tax,
		GrandTotal: r.GrandTotal,
		PlacedAt:   r.PlacedAt,
	}

	if err := p.publish(ctx, TopicOrderPlaced, TypeOrderPlaced, sessionID, data); err != nil {
		return fmt.Errorf("publish order.placed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.placed event",
		slog.String("session_id", sessionID),
		slog.String("reference", r.Reference),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, eventType, key string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, key, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if p.pub == nil {
		p.logger.DebugContext(ctx, "event dropped, kafka disabled",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
			slog.String("key", key),
		)
		return nil
	}

	return p.pub.Publish(ctx, topic, evt)
}

func itemData(items []domain.CartLineItem) []CartItemData {
	out := make([]CartItemData, len(items))
	for i, it := range items {
		out[i] = CartItemData{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		}
	}
	return out
}
