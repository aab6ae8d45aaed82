package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
-- Clients: one table for both variants
CREATE TABLE clients (
    id UUID PRIMARY KEY,
    variant TEXT NOT NULL CHECK (variant IN ('PERSON', 'COMPANY')),
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL,
    birthdate DATE,
    company_identifier TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    deleted_at TIMESTAMPTZ,
    CONSTRAINT clients_email_key UNIQUE (email),
    CONSTRAINT clients_company_identifier_key UNIQUE (company_identifier),
    CONSTRAINT clients_variant_fields_check CHECK (
        (variant = 'PERSON' AND birthdate IS NOT NULL AND company_identifier IS NULL) OR
        (variant = 'COMPANY' AND company_identifier IS NOT NULL AND birthdate IS NULL)
    )
);

-- Contracts are closed, never deleted
CREATE TABLE contracts (
    id UUID PRIMARY KEY,
    client_id UUID NOT NULL REFERENCES clients(id),
    start_date DATE NOT NULL,
    end_date DATE,
    cost_amount NUMERIC NOT NULL CHECK (cost_amount > 0),
    last_update_date TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);

-- Indexes
CREATE INDEX idx_clients_active ON clients(created_at, id) WHERE deleted_at IS NULL;
CREATE INDEX idx_contracts_client ON contracts(client_id, created_at);
CREATE INDEX idx_contracts_client_end ON contracts(client_id, end_date);
`,
	},
	{
		version: 2,
		sql: `
-- API users
CREATE TABLE users (
    id UUID PRIMARY KEY,
    username TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('admin', 'client')),
    client_id UUID REFERENCES clients(id),
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    CONSTRAINT users_username_key UNIQUE (username)
);
`,
	},
}

// Migrate applies all pending schema migrations and returns the resulting version.
func Migrate(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to create schema_version table: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serializes concurrent migrators until commit.
	if _, err := tx.Exec(ctx, `LOCK TABLE schema_version IN EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("failed to lock schema_version: %w", err)
	}

	var current int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			return 0, fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, m.version); err != nil {
			return 0, fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
		current = m.version
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit migrations: %w", err)
	}
	return current, nil
}
