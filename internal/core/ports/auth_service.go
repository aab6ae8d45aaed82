package ports

import (
	"context"

	"github.com/99minutos/client-contracts/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, role, clientID string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
