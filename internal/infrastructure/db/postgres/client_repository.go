package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

const clientColumns = `
  id::text, variant, name, email, phone, birthdate, company_identifier, created_at, updated_at, deleted_at`

// ClientRepository implements ports.ClientRepository on Postgres.
type ClientRepository struct {
	db *pgxpool.Pool
}

func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: db}
}

var _ ports.ClientRepository = (*ClientRepository)(nil)

func scanClient(row pgx.Row) (*domain.Client, error) {
	var (
		c       domain.Client
		variant string
	)
	if err := row.Scan(
		&c.ID,
		&variant,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Birthdate,
		&c.CompanyIdentifier,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	); err != nil {
		return nil, err
	}
	c.Variant = domain.ClientVariant(variant)
	if !c.Variant.Valid() {
		return nil, fmt.Errorf("client %s: unknown variant %q", c.ID, variant)
	}
	if c.Birthdate != nil {
		bd := domain.DateOf(*c.Birthdate)
		c.Birthdate = &bd
	}
	return &c, nil
}

func clientNotFound(id string) error {
	return fmt.Errorf("%w: client %s", domain.ErrNotFound, id)
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	const q = `
INSERT INTO clients (
  id, variant, name, email, phone, birthdate, company_identifier, created_at, updated_at
) VALUES (
  $1::uuid, $2, $3, $4, $5, $6, $7, $8, $9
);
`
	_, err := conn(ctx, r.db).Exec(ctx, q,
		c.ID,
		string(c.Variant),
		c.Name,
		c.Email,
		c.Phone,
		c.Birthdate,
		c.CompanyIdentifier,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return translate(err, nil)
}

func (r *ClientRepository) FindActiveByID(ctx context.Context, id string) (*domain.Client, error) {
	q := `SELECT` + clientColumns + `
FROM clients
WHERE id = $1::uuid AND deleted_at IS NULL
LIMIT 1;
`
	c, err := scanClient(conn(ctx, r.db).QueryRow(ctx, q, id))
	if err != nil {
		return nil, translate(err, clientNotFound(id))
	}
	return c, nil
}

func (r *ClientRepository) LockActiveByID(ctx context.Context, id string) (*domain.Client, error) {
	q := `SELECT` + clientColumns + `
FROM clients
WHERE id = $1::uuid AND deleted_at IS NULL
FOR UPDATE;
`
	c, err := scanClient(conn(ctx, r.db).QueryRow(ctx, q, id))
	if err != nil {
		return nil, translate(err, clientNotFound(id))
	}
	return c, nil
}

func (r *ClientRepository) UpdateContactInfo(ctx context.Context, id string, contact domain.ContactInfo, at time.Time) (*domain.Client, error) {
	q := `
UPDATE clients
SET
  name = $2,
  email = $3,
  phone = $4,
  updated_at = $5
WHERE id = $1::uuid AND deleted_at IS NULL
RETURNING` + clientColumns + `;
`
	c, err := scanClient(conn(ctx, r.db).QueryRow(ctx, q, id, contact.Name, contact.Email, contact.Phone, at))
	if err != nil {
		return nil, translate(err, clientNotFound(id))
	}
	return c, nil
}

func (r *ClientRepository) MarkDeleted(ctx context.Context, id string, at time.Time) error {
	const q = `
UPDATE clients
SET deleted_at = $2, updated_at = $2
WHERE id = $1::uuid AND deleted_at IS NULL;
`
	tag, err := conn(ctx, r.db).Exec(ctx, q, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return clientNotFound(id)
	}
	return nil
}

func (r *ClientRepository) ListActive(ctx context.Context, filter ports.ListClientsFilter) ([]*domain.Client, int64, error) {
	db := conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE deleted_at IS NULL;`).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT` + clientColumns + `
FROM clients
WHERE deleted_at IS NULL
ORDER BY created_at, id
LIMIT $1 OFFSET $2;
`
	rows, err := db.Query(ctx, q, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*domain.Client, 0, filter.Limit)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}
