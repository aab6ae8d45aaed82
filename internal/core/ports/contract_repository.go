package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/99minutos/client-contracts/internal/core/domain"
)

// ActiveContractsFilter selects contracts matching the active predicate
// (end_date IS NULL OR end_date > AsOf) for one client.
type ActiveContractsFilter struct {
	ClientID     string
	AsOf         time.Time
	UpdatedSince *time.Time // optional: last_update_date >= UpdatedSince
}

// ContractRepository defines persistence operations for contracts.
// Bulk closure and the cost sum are pushed down to the store.
type ContractRepository interface {
	Create(ctx context.Context, c *domain.Contract) error
	FindByID(ctx context.Context, id string) (*domain.Contract, error)
	// LockByID is FindByID holding a row lock until the transaction ends.
	LockByID(ctx context.Context, id string) (*domain.Contract, error)
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal, at time.Time) (*domain.Contract, error)
	ListActive(ctx context.Context, filter ActiveContractsFilter) ([]*domain.Contract, error)
	// ListByClient returns a page of every contract of the client and the total count.
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Contract, int64, error)
	SumActiveCost(ctx context.Context, clientID string, asOf time.Time) (decimal.Decimal, error)
	// CloseActive sets end_date = asOf and last_update_date = at on every active
	// contract of the client and returns how many rows changed.
	CloseActive(ctx context.Context, clientID string, asOf, at time.Time) (int64, error)
}
