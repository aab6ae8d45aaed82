package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

// UserRepository implements ports.AuthRepository on Postgres.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

var _ ports.AuthRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (
  id, username, password_hash, role, client_id, created_at, updated_at
) VALUES (
  $1::uuid, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7
);
`
	_, err := conn(ctx, r.db).Exec(ctx, q,
		u.ID,
		u.Username,
		u.PasswordHash,
		u.Role,
		u.ClientID,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, translate(err, nil)
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const q = `
SELECT
  id::text, username, password_hash, role, COALESCE(client_id::text, ''), created_at, updated_at
FROM users
WHERE username = $1
LIMIT 1;
`
	var u domain.User
	err := conn(ctx, r.db).QueryRow(ctx, q, username).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.ClientID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, domain.ErrUserNotFound)
	}
	return &u, nil
}
