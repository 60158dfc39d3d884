// Package memory keeps cart snapshots in process memory. Everything is lost
// on restart.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// SnapshotRepository is a map-backed repository.SnapshotRepository.
type SnapshotRepository struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartLineItem
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository returns an empty repository.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{carts: make(map[string][]domain.CartLineItem)}
}

func (r *SnapshotRepository) Get(_ context.Context, sessionID string) ([]domain.CartLineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, ok := r.carts[sessionID]
	if !ok {
		return nil, apperrors.NotFound("cart", sessionID)
	}
	return slices.Clone(items), nil
}

func (r *SnapshotRepository) Save(_ context.Context, sessionID string, items []domain.CartLineItem) error {
	stored := slices.Clone(items)
	if stored == nil {
		stored = []domain.CartLineItem{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[sessionID] = stored
	return nil
}

func (r *SnapshotRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

// Len is the number of stored snapshots.
func (r *SnapshotRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}
