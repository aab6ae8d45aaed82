package ports

import (
	"context"

	"github.com/99minutos/client-contracts/internal/core/domain"
)

// AuthRepository defines the interface for API user persistence.
type AuthRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
