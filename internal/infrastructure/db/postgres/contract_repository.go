package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

const contractColumns = `
  id::text, client_id::text, start_date, end_date, cost_amount::text, last_update_date, created_at`

// activePredicate is the single definition of an active contract in SQL.
// $2 is the reference date.
const activePredicate = `(end_date IS NULL OR end_date > $2::date)`

// ContractRepository implements ports.ContractRepository on Postgres.
type ContractRepository struct {
	db *pgxpool.Pool
}

func NewContractRepository(db *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{db: db}
}

var _ ports.ContractRepository = (*ContractRepository)(nil)

func scanContract(row pgx.Row) (*domain.Contract, error) {
	var (
		c    domain.Contract
		cost string
	)
	if err := row.Scan(
		&c.ID,
		&c.ClientID,
		&c.StartDate,
		&c.EndDate,
		&cost,
		&c.LastUpdateDate,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("parse cost_amount %q: %w", cost, err)
	}
	c.CostAmount = amount
	c.StartDate = domain.DateOf(c.StartDate)
	if c.EndDate != nil {
		end := domain.DateOf(*c.EndDate)
		c.EndDate = &end
	}
	return &c, nil
}

func scanContracts(rows pgx.Rows) ([]*domain.Contract, error) {
	defer rows.Close()
	out := []*domain.Contract{}
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func contractNotFound(id string) error {
	return fmt.Errorf("%w: contract %s", domain.ErrNotFound, id)
}

func (r *ContractRepository) Create(ctx context.Context, c *domain.Contract) error {
	const q = `
INSERT INTO contracts (
  id, client_id, start_date, end_date, cost_amount, last_update_date, created_at
) VALUES (
  $1::uuid, $2::uuid, $3, $4, $5::numeric, $6, $7
);
`
	_, err := conn(ctx, r.db).Exec(ctx, q,
		c.ID,
		c.ClientID,
		c.StartDate,
		c.EndDate,
		c.CostAmount.String(),
		c.LastUpdateDate,
		c.CreatedAt,
	)
	return translate(err, nil)
}

func (r *ContractRepository) FindByID(ctx context.Context, id string) (*domain.Contract, error) {
	q := `SELECT` + contractColumns + `
FROM contracts
WHERE id = $1::uuid
LIMIT 1;
`
	c, err := scanContract(conn(ctx, r.db).QueryRow(ctx, q, id))
	if err != nil {
		return nil, translate(err, contractNotFound(id))
	}
	return c, nil
}

func (r *ContractRepository) LockByID(ctx context.Context, id string) (*domain.Contract, error) {
	q := `SELECT` + contractColumns + `
FROM contracts
WHERE id = $1::uuid
FOR UPDATE;
`
	c, err := scanContract(conn(ctx, r.db).QueryRow(ctx, q, id))
	if err != nil {
		return nil, translate(err, contractNotFound(id))
	}
	return c, nil
}

func (r *ContractRepository) UpdateCost(ctx context.Context, id string, cost decimal.Decimal, at time.Time) (*domain.Contract, error) {
	q := `
UPDATE contracts
SET cost_amount = $2::numeric, last_update_date = $3
WHERE id = $1::uuid
RETURNING` + contractColumns + `;
`
	c, err := scanContract(conn(ctx, r.db).QueryRow(ctx, q, id, cost.String(), at))
	if err != nil {
		return nil, translate(err, contractNotFound(id))
	}
	return c, nil
}

func (r *ContractRepository) ListActive(ctx context.Context, filter ports.ActiveContractsFilter) ([]*domain.Contract, error) {
	q := `SELECT` + contractColumns + `
FROM contracts
WHERE client_id = $1::uuid
  AND ` + activePredicate + `
  AND ($3::timestamptz IS NULL OR last_update_date >= $3::timestamptz)
ORDER BY created_at, id;
`
	rows, err := conn(ctx, r.db).Query(ctx, q, filter.ClientID, filter.AsOf, filter.UpdatedSince)
	if err != nil {
		return nil, err
	}
	return scanContracts(rows)
}

func (r *ContractRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Contract, int64, error) {
	db := conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM contracts WHERE client_id = $1::uuid;`, clientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT` + contractColumns + `
FROM contracts
WHERE client_id = $1::uuid
ORDER BY created_at, id
LIMIT $2 OFFSET $3;
`
	rows, err := db.Query(ctx, q, clientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := scanContracts(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ContractRepository) SumActiveCost(ctx context.Context, clientID string, asOf time.Time) (decimal.Decimal, error) {
	q := `
SELECT COALESCE(SUM(cost_amount), 0)::text
FROM contracts
WHERE client_id = $1::uuid
  AND ` + activePredicate + `;
`
	var sum string
	if err := conn(ctx, r.db).QueryRow(ctx, q, clientID, asOf).Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(sum)
}

func (r *ContractRepository) CloseActive(ctx context.Context, clientID string, asOf, at time.Time) (int64, error) {
	q := `
UPDATE contracts
SET end_date = $2::date, last_update_date = $3
WHERE client_id = $1::uuid
  AND ` + activePredicate + `;
`
	tag, err := conn(ctx, r.db).Exec(ctx, q, clientID, asOf, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
