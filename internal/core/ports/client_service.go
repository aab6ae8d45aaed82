package ports

import (
	"context"
	"time"

	"github.com/99minutos/client-contracts/internal/core/domain"
)

// CreatePersonInput carries the data needed to register an individual.
type CreatePersonInput struct {
	Name      string
	Email     string
	Phone     string
	Birthdate time.Time
	// IdempotencyKey is optional; a repeated key replays the first result.
	IdempotencyKey string
}

// CreateCompanyInput carries the data needed to register a company.
type CreateCompanyInput struct {
	Name              string
	Email             string
	Phone             string
	CompanyIdentifier string
	IdempotencyKey    string
}

// UpdateContactInput holds the only client fields that may change.
type UpdateContactInput struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// ClientResult is returned by the create operations.
type ClientResult struct {
	Client *domain.Client
	// AlreadyExisted is true when the Idempotency-Key matched an earlier create.
	AlreadyExisted bool
}

// ListClientsInput is a 0-based page request.
type ListClientsInput struct {
	Page int
	Size int
}

// ListClientsResult is one page of active clients plus the total count the
// transport layer needs for range framing.
type ListClientsResult struct {
	Items []*domain.Client
	Total int64
	Page  int
	Size  int
}

// ClientService is the client registry.
type ClientService interface {
	CreatePerson(ctx context.Context, input CreatePersonInput) (*ClientResult, error)
	CreateCompany(ctx context.Context, input CreateCompanyInput) (*ClientResult, error)
	ReadActive(ctx context.Context, id string) (*domain.Client, error)
	UpdateContactInfo(ctx context.Context, input UpdateContactInput) (*domain.Client, error)
	ListActive(ctx context.Context, input ListClientsInput) (*ListClientsResult, error)
	History(ctx context.Context, clientID string, limit int) ([]*domain.AuditEvent, error)
}

// LifecycleService composes the registry and the ledger for operations that
// span both.
type LifecycleService interface {
	// DeleteClient closes the client's active contracts and soft-deletes it in
	// one transaction. It returns the number of contracts closed.
	DeleteClient(ctx context.Context, id string) (int64, error)
}
