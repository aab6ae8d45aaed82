package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

// ClientRegistry is the part of the client registry the delete saga needs.
type ClientRegistry interface {
	ReadActiveForUpdate(ctx context.Context, id string) (*domain.Client, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

// ContractCloser is the part of the ledger the delete saga needs.
type ContractCloser interface {
	CloseActiveContracts(ctx context.Context, clientID string, asOf time.Time) (int64, error)
}

// LifecycleService runs the operations that span clients and contracts.
type LifecycleService struct {
	sideEffects
	clients   ClientRegistry
	contracts ContractCloser
	tx        ports.TxManager
	now       func() time.Time
}

func NewLifecycleService(
	clients ClientRegistry,
	contracts ContractCloser,
	tx ports.TxManager,
	audit ports.AuditLog,
	logger zerolog.Logger,
) *LifecycleService {
	return &LifecycleService{
		sideEffects: sideEffects{audit: audit, logger: logger},
		clients:     clients,
		contracts:   contracts,
		tx:          tx,
		now:         time.Now,
	}
}

// DeleteClient closes every active contract of the client as of today and
// then soft-deletes the client, both in one transaction. Deleting an already
// deleted client fails with domain.ErrNotFound.
func (s *LifecycleService) DeleteClient(ctx context.Context, id string) (int64, error) {
	now := s.now().UTC()
	today := domain.DateOf(now)

	var closed int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.clients.ReadActiveForUpdate(ctx, id); err != nil {
			return err
		}
		var err error
		closed, err = s.contracts.CloseActiveContracts(ctx, id, today)
		if err != nil {
			return err
		}
		return s.clients.SoftDelete(ctx, id, now)
	})
	if err != nil {
		return 0, err
	}

	if closed > 0 {
		s.record(ctx, id, id, domain.ActionContractsClosed, now, map[string]string{
			"closed":   strconv.FormatInt(closed, 10),
			"end_date": today.Format(domain.DateLayout),
		})
	}
	s.record(ctx, id, id, domain.ActionClientDeleted, now, nil)
	s.logger.Info().Str("client_id", id).Int64("contracts_closed", closed).Msg("client deleted")

	return closed, nil
}
