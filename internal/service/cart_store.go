package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// persistTimeout bounds one snapshot write.
const persistTimeout = 3 * time.Second

// CartStore holds the authoritative cart of one session. Every mutation
// applies a pure domain transition and then writes the full new state to
// the snapshot repository.
//
// CartStore is not safe for concurrent use; its Session serializes access.
type CartStore struct {
	sessionID string
	repo      repository.SnapshotRepository
	events    EventPublisher
	logger    *slog.Logger
	cart      domain.Cart
}

// OpenCartStore rehydrates the cart for sessionID. A missing snapshot yields
// an empty cart; so does a malformed one, which is logged and otherwise
// ignored. Only a failure to reach the repository is returned.
func OpenCartStore(ctx context.Context, sessionID string, repo repository.SnapshotRepository, events EventPublisher, l *slog.Logger) (*CartStore, error) {
	if events == nil {
		events = nopEvents{}
	}
	if l == nil {
		l = slog.Default()
	}
	s := &CartStore{
		sessionID: sessionID,
		repo:      repo,
		events:    events,
		logger:    l,
		cart:      domain.NewCart(nil),
	}

	items, err := repo.Get(ctx, sessionID)
	switch {
	case err == nil:
		s.cart = domain.NewCart(items)
		if dropped := len(items) - s.cart.Len(); dropped > 0 {
			s.log(ctx).WarnContext(ctx, "dropped invalid cart lines from snapshot",
				slog.Int("dropped", dropped),
			)
		}
		cartRehydrationsTotal.WithLabelValues("restored").Inc()
	case errors.Is(err, apperrors.ErrNotFound):
		cartRehydrationsTotal.WithLabelValues("empty").Inc()
	case errors.Is(err, repository.ErrMalformedSnapshot):
		s.log(ctx).WarnContext(ctx, "ignoring malformed cart snapshot",
			slog.String("error", err.Error()),
		)
		cartRehydrationsTotal.WithLabelValues("malformed").Inc()
	default:
		cartRehydrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}

	return s, nil
}

// Cart returns the current cart. The value is safe to keep; later
// mutations never change it.
func (s *CartStore) Cart() domain.Cart { return s.cart }

// Items returns the current lines in insertion order.
func (s *CartStore) Items() []domain.CartLineItem { return s.cart.Items }

// Item returns the line for productID.
func (s *CartStore) Item(productID string) (domain.CartLineItem, bool) {
	return s.cart.Item(productID)
}

// TotalItems is the sum of quantities.
func (s *CartStore) TotalItems() int { return s.cart.TotalItems() }

// TotalPrice is the sum of price times quantity.
func (s *CartStore) TotalPrice() decimal.Decimal { return s.cart.TotalPrice() }

// AddItem adds one unit of p.
func (s *CartStore) AddItem(ctx context.Context, p domain.Product) {
	s.apply(ctx, "add", s.cart.AddItem(p))
}

// RemoveItem deletes the line for productID, if present.
func (s *CartStore) RemoveItem(ctx context.Context, productID string) {
	s.apply(ctx, "remove", s.cart.RemoveItem(productID))
}

// IncreaseQuantity adds one unit to an existing line.
func (s *CartStore) IncreaseQuantity(ctx context.Context, productID string) {
	s.apply(ctx, "increase", s.cart.IncreaseQuantity(productID))
}

// DecreaseQuantity removes one unit from a line holding more than one. A
// line with a single unit is left alone.
func (s *CartStore) DecreaseQuantity(ctx context.Context, productID string) {
	s.apply(ctx, "decrease", s.cart.DecreaseQuantity(productID))
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context) {
	s.apply(ctx, "clear", s.cart.Clear())
}

func (s *CartStore) apply(ctx context.Context, op string, next domain.Cart) {
	s.cart = next
	cartMutationsTotal.WithLabelValues(op).Inc()
	s.persist(ctx)

	if err := s.events.PublishCartUpdated(ctx, s.sessionID, next); err != nil {
		eventPublishErrorsTotal.WithLabelValues("cart.updated").Inc()
		s.log(ctx).ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("error", err.Error()),
		)
	}
}

// persist writes the whole cart. Failures are logged and counted only; the
// in-memory cart stays authoritative.
func (s *CartStore) persist(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.repo.Save(ctx, s.sessionID, s.cart.Items); err != nil {
		cartPersistErrorsTotal.Inc()
		s.log(ctx).ErrorContext(ctx, "failed to persist cart",
			slog.Int("lines", s.cart.Len()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CartStore) log(ctx context.Context) *slog.Logger {
	l := logger.WithContext(ctx, s.logger)
	if logger.SessionIDFromContext(ctx) == "" {
		l = l.With(slog.String("session_id", s.sessionID))
	}
	return l
}
