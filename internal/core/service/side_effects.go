package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

// Idempotency scopes keep keys of different create endpoints apart.
const (
	scopePerson   = "client_person"
	scopeCompany  = "client_company"
	scopeContract = "contract"
)

// sideEffects bundles the non-transactional collaborators of the services.
// Both are optional and neither can fail an operation.
type sideEffects struct {
	idem   ports.IdempotencyStore
	audit  ports.AuditLog
	logger zerolog.Logger
}

// lookup returns the resource id remembered for key, if any.
func (e sideEffects) lookup(ctx context.Context, scope, key string) (string, bool) {
	if key == "" || e.idem == nil {
		return "", false
	}
	id, found, err := e.idem.Lookup(ctx, scope, key)
	if err != nil {
		e.logger.Warn().Err(err).Str("scope", scope).Msg("idempotency lookup failed, creating anyway")
		return "", false
	}
	return id, found
}

func (e sideEffects) remember(ctx context.Context, scope, key, id string) {
	if key == "" || e.idem == nil {
		return
	}
	if err := e.idem.Remember(ctx, scope, key, id); err != nil {
		e.logger.Warn().Err(err).Str("scope", scope).Str("id", id).Msg("failed to store idempotency key")
	}
}

// record appends to the audit trail. Call it only after the transaction committed.
func (e sideEffects) record(ctx context.Context, clientID, entityID string, action domain.AuditAction, at time.Time, details map[string]string) {
	if e.audit == nil {
		return
	}
	ev := &domain.AuditEvent{
		ClientID:   clientID,
		EntityID:   entityID,
		Action:     action,
		Actor:      domain.ActorFrom(ctx),
		OccurredAt: at,
		Details:    details,
	}
	if err := e.audit.Record(ctx, ev); err != nil {
		e.logger.Warn().Err(err).Str("client_id", clientID).Str("action", string(action)).Msg("failed to record audit event")
	}
}

// checkID rejects ids that cannot name any stored entity.
func checkID(entity, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s %q", domain.ErrNotFound, entity, id)
	}
	return nil
}
