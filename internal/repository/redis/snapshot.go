package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// KeyPrefix namespaces cart snapshots.
const KeyPrefix = "storefront:cart:"

// DefaultTTL keeps an untouched cart for a week.
const DefaultTTL = 168 * time.Hour

// SnapshotRepository implements repository.SnapshotRepository using Redis.
// Each session's cart is a JSON array under one key.
type SnapshotRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a Redis-backed snapshot repository. A
// non-positive ttl uses DefaultTTL.
func NewSnapshotRepository(client redis.UniversalClient, ttl time.Duration) *SnapshotRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SnapshotRepository{
		client: client,
		ttl:    ttl,
	}
}

// Key returns the Redis key holding sessionID's cart.
func Key(sessionID string) string {
	return KeyPrefix + sessionID
}

// Get retrieves the cart lines stored for sessionID.
func (r *SnapshotRepository) Get(ctx context.Context, sessionID string) (items []domain.CartLineItem, err error) {
	key := Key(sessionID)
	ctx, end := database.TraceCommand(ctx, "GET", key)
	defer func() { end(err) }()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", sessionID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart %s: %w: %w", sessionID, repository.ErrMalformedSnapshot, err)
	}
	if items == nil {
		items = []domain.CartLineItem{}
	}

	return items, nil
}

// Save persists the cart lines with the configured TTL.
func (r *SnapshotRepository) Save(ctx context.Context, sessionID string, items []domain.CartLineItem) (err error) {
	key := Key(sessionID)
	ctx, end := database.TraceCommand(ctx, "SET", key)
	defer func() { end(err) }()

	if items == nil {
		items = []domain.CartLineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes the snapshot for sessionID.
func (r *SnapshotRepository) Delete(ctx context.Context, sessionID string) (err error) {
	key := Key(sessionID)
	ctx, end := database.TraceCommand(ctx, "DEL", key)
	defer func() { end(err) }()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}

	return nil
}
