package repository

import (
	"context"
	"errors"

	"github.com/utafrali/storefront/internal/domain"
)

// ErrMalformedSnapshot is wrapped by Get when a stored snapshot cannot be
// decoded.
var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// SnapshotRepository stores the full cart of one session as a single value.
type SnapshotRepository interface {
	// Get returns the stored lines for sessionID, or an error wrapping
	// apperrors.ErrNotFound when nothing is stored.
	Get(ctx context.Context, sessionID string) ([]domain.CartLineItem, error)

	// Save overwrites the snapshot for sessionID.
	Save(ctx context.Context, sessionID string, items []domain.CartLineItem) error

	// Delete removes the snapshot for sessionID. Deleting a missing snapshot
	// is not an error.
	Delete(ctx context.Context, sessionID string) error
}
