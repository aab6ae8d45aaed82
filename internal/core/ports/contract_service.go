package ports

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/99minutos/client-contracts/internal/core/domain"
)

// CreateContractInput carries the data needed to open a contract.
type CreateContractInput struct {
	ClientID       string
	StartDate      time.Time  // zero = today
	EndDate        *time.Time // nil = open-ended
	CostAmount     decimal.Decimal
	IdempotencyKey string
}

// UpdateContractInput changes the cost of a contract. A nil CostAmount only
// bumps the last update date.
type UpdateContractInput struct {
	ID         string
	CostAmount *decimal.Decimal
}

// ContractResult is returned by Create.
type ContractResult struct {
	Contract       *domain.Contract
	AlreadyExisted bool
}

// ListContractsInput is a 0-based page request.
type ListContractsInput struct {
	Page int
	Size int
}

// ListContractsResult is one page of a client's contracts.
type ListContractsResult struct {
	Items []*domain.Contract
	Total int64
	Page  int
	Size  int
}

// ContractService is the contract ledger. A zero asOf means the service-clock today.
type ContractService interface {
	Create(ctx context.Context, input CreateContractInput) (*ContractResult, error)
	Get(ctx context.Context, id string) (*domain.Contract, error)
	Update(ctx context.Context, input UpdateContractInput) (*domain.Contract, error)
	ListActiveForClient(ctx context.Context, clientID string, asOf time.Time) ([]*domain.Contract, error)
	ListActiveForClientSince(ctx context.Context, clientID string, updatedSince, asOf time.Time) ([]*domain.Contract, error)
	ListForClient(ctx context.Context, clientID string, input ListContractsInput) (*ListContractsResult, error)
	SumActiveCost(ctx context.Context, clientID string, asOf time.Time) (decimal.Decimal, error)
	CloseActiveContracts(ctx context.Context, clientID string, asOf time.Time) (int64, error)
}

// Paging bounds page sizes for every listing.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

// Clamp normalizes a 0-based page request and returns it with the row offset.
func (p Paging) Clamp(page, size int) (clampedPage, clampedSize, offset int) {
	def, maxSize := p.DefaultSize, p.MaxSize
	if def <= 0 {
		def = 20
	}
	if maxSize <= 0 {
		maxSize = 200
	}
	if size <= 0 {
		size = def
	}
	if size > maxSize {
		size = maxSize
	}
	if page < 0 {
		page = 0
	}
	// keeps page*size within int32
	if limit := math.MaxInt32 / size; page > limit {
		page = limit
	}
	return page, size, page * size
}
