package ports

import (
	"context"

	"github.com/99minutos/client-contracts/internal/core/domain"
)

// IdempotencyStore remembers which resource an Idempotency-Key produced so a
// retried create returns the original resource instead of a conflict.
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope, key string) (resourceID string, found bool, err error)
	Remember(ctx context.Context, scope, key, resourceID string) error
}

// AuditLog is the append-only trail of committed lifecycle changes.
type AuditLog interface {
	Record(ctx context.Context, event *domain.AuditEvent) error
	ListByClient(ctx context.Context, clientID string, limit int) ([]*domain.AuditEvent, error)
}
