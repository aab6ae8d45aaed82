package domain

import (
	"context"
	"time"
)

// AuditAction names a lifecycle change recorded in the audit trail.
type AuditAction string

const (
	ActionClientCreated   AuditAction = "client_created"
	ActionClientUpdated   AuditAction = "client_updated"
	ActionClientDeleted   AuditAction = "client_deleted"
	ActionContractCreated AuditAction = "contract_created"
	ActionContractUpdated AuditAction = "contract_updated"
	ActionContractsClosed AuditAction = "contracts_closed"
)

// AuditEvent is an append-only record of a committed change. It is written
// after the transaction commits and is never read back by the core rules.
type AuditEvent struct {
	ClientID   string
	EntityID   string
	Action     AuditAction
	Actor      string
	OccurredAt time.Time
	Details    map[string]string // optional
}

// SystemActor is recorded when no authenticated user is attached to ctx.
const SystemActor = "system"

type actorKey struct{}

// WithActor attaches the authenticated username to ctx for the audit trail.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the username attached by WithActor, or SystemActor.
func ActorFrom(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(string); ok && a != "" {
		return a
	}
	return SystemActor
}
