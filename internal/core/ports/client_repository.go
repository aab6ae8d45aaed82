package ports

import (
	"context"
	"time"

	"github.com/99minutos/client-contracts/internal/core/domain"
)

// ListClientsFilter carries pagination for the active-client listing.
type ListClientsFilter struct {
	Limit  int
	Offset int
}

// ClientRepository defines persistence operations for clients.
// Unique violations on email or company identifier surface as domain.ErrConflict;
// missing or soft-deleted rows surface as domain.ErrNotFound.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	// FindActiveByID returns the client only when deleted_at is null.
	FindActiveByID(ctx context.Context, id string) (*domain.Client, error)
	// LockActiveByID is FindActiveByID holding a row lock until the
	// surrounding transaction ends.
	LockActiveByID(ctx context.Context, id string) (*domain.Client, error)
	UpdateContactInfo(ctx context.Context, id string, contact domain.ContactInfo, at time.Time) (*domain.Client, error)
	// MarkDeleted sets deleted_at on an active client.
	MarkDeleted(ctx context.Context, id string, at time.Time) error
	// ListActive returns a page of active clients in creation order and the
	// total number of active clients.
	ListActive(ctx context.Context, filter ListClientsFilter) ([]*domain.Client, int64, error)
}
