package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

// ActiveClientReader resolves active clients. The ledger delegates the
// "client must be active" rule to the registry through it.
type ActiveClientReader interface {
	ReadActive(ctx context.Context, id string) (*domain.Client, error)
	// ReadActiveForUpdate locks the client row until the surrounding
	// transaction ends, so a concurrent delete cannot slip in between.
	ReadActiveForUpdate(ctx context.Context, id string) (*domain.Client, error)
}

// ContractService is the contract ledger.
type ContractService struct {
	sideEffects
	repo    ports.ContractRepository
	clients ActiveClientReader
	tx      ports.TxManager
	paging  ports.Paging
	now     func() time.Time
}

func NewContractService(
	repo ports.ContractRepository,
	clients ActiveClientReader,
	tx ports.TxManager,
	idem ports.IdempotencyStore,
	audit ports.AuditLog,
	paging ports.Paging,
	logger zerolog.Logger,
) *ContractService {
	return &ContractService{
		sideEffects: sideEffects{idem: idem, audit: audit, logger: logger},
		repo:        repo,
		clients:     clients,
		tx:          tx,
		paging:      paging,
		now:         time.Now,
	}
}

func (s *ContractService) today() time.Time {
	return domain.DateOf(s.now().UTC())
}

func (s *ContractService) asOfOrToday(asOf time.Time) time.Time {
	if asOf.IsZero() {
		return s.today()
	}
	return domain.DateOf(asOf)
}

// Create opens a contract for an active client.
func (s *ContractService) Create(ctx context.Context, in ports.CreateContractInput) (*ports.ContractResult, error) {
	if id, found := s.lookup(ctx, scopeContract, in.IdempotencyKey); found {
		existing, err := s.Get(ctx, id)
		if err == nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("contract_id", id).Msg("idempotent replay")
			return &ports.ContractResult{Contract: existing, AlreadyExisted: true}, nil
		}
		s.logger.Warn().Err(err).Str("contract_id", id).Msg("idempotent replay target unavailable, creating anyway")
	}

	now := s.now().UTC()
	var contract *domain.Contract
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.clients.ReadActiveForUpdate(ctx, in.ClientID); err != nil {
			return err
		}
		var err error
		contract, err = domain.NewContract(uuid.NewString(), in.ClientID, in.StartDate, in.EndDate, in.CostAmount, domain.DateOf(now), now)
		if err != nil {
			return err
		}
		return s.repo.Create(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	s.remember(ctx, scopeContract, in.IdempotencyKey, contract.ID)
	s.record(ctx, contract.ClientID, contract.ID, domain.ActionContractCreated, now, map[string]string{
		"cost_amount": contract.CostAmount.String(),
	})
	s.logger.Info().Str("contract_id", contract.ID).Str("client_id", contract.ClientID).Msg("contract created")

	return &ports.ContractResult{Contract: contract}, nil
}

// Get loads a contract whatever the state of its owning client.
func (s *ContractService) Get(ctx context.Context, id string) (*domain.Contract, error) {
	if err := checkID("contract", id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Update changes the cost amount when one is given and always bumps the last
// update date. The owning client may be soft-deleted.
func (s *ContractService) Update(ctx context.Context, in ports.UpdateContractInput) (*domain.Contract, error) {
	if err := checkID("contract", in.ID); err != nil {
		return nil, err
	}
	if in.CostAmount != nil {
		if err := domain.ValidateCost(*in.CostAmount); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	var updated *domain.Contract
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.LockByID(ctx, in.ID)
		if err != nil {
			return err
		}
		cost := current.CostAmount
		if in.CostAmount != nil {
			cost = *in.CostAmount
		}
		updated, err = s.repo.UpdateCost(ctx, in.ID, cost, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, updated.ClientID, updated.ID, domain.ActionContractUpdated, now, map[string]string{
		"cost_amount": updated.CostAmount.String(),
	})
	s.logger.Info().Str("contract_id", updated.ID).Msg("contract updated")
	return updated, nil
}

// ListActiveForClient returns the client's contracts that are active as of asOf.
func (s *ContractService) ListActiveForClient(ctx context.Context, clientID string, asOf time.Time) ([]*domain.Contract, error) {
	return s.listActive(ctx, ports.ActiveContractsFilter{
		ClientID: clientID,
		AsOf:     s.asOfOrToday(asOf),
	})
}

// ListActiveForClientSince is ListActiveForClient restricted to contracts
// updated at or after updatedSince.
func (s *ContractService) ListActiveForClientSince(ctx context.Context, clientID string, updatedSince, asOf time.Time) ([]*domain.Contract, error) {
	since := updatedSince.UTC()
	return s.listActive(ctx, ports.ActiveContractsFilter{
		ClientID:     clientID,
		AsOf:         s.asOfOrToday(asOf),
		UpdatedSince: &since,
	})
}

func (s *ContractService) listActive(ctx context.Context, filter ports.ActiveContractsFilter) ([]*domain.Contract, error) {
	if err := checkID("client", filter.ClientID); err != nil {
		return nil, err
	}
	return s.repo.ListActive(ctx, filter)
}

// ListForClient returns one page of every contract of the client.
func (s *ContractService) ListForClient(ctx context.Context, clientID string, in ports.ListContractsInput) (*ports.ListContractsResult, error) {
	if err := checkID("client", clientID); err != nil {
		return nil, err
	}
	page, size, offset := s.paging.Clamp(in.Page, in.Size)

	var (
		items []*domain.Contract
		total int64
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		items, total, err = s.repo.ListByClient(ctx, clientID, size, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ports.ListContractsResult{Items: items, Total: total, Page: page, Size: size}, nil
}

// SumActiveCost totals the cost of the client's active contracts. The sum is
// computed by the store; it is zero when nothing is active.
func (s *ContractService) SumActiveCost(ctx context.Context, clientID string, asOf time.Time) (decimal.Decimal, error) {
	if err := checkID("client", clientID); err != nil {
		return decimal.Zero, err
	}
	return s.repo.SumActiveCost(ctx, clientID, s.asOfOrToday(asOf))
}

// CloseActiveContracts ends every active contract of the client on asOf.
// Running it twice on the same date closes nothing the second time.
func (s *ContractService) CloseActiveContracts(ctx context.Context, clientID string, asOf time.Time) (int64, error) {
	if err := checkID("client", clientID); err != nil {
		return 0, err
	}
	day := s.asOfOrToday(asOf)

	var closed int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		closed, err = s.repo.CloseActive(ctx, clientID, day, s.now().UTC())
		return err
	})
	if err != nil {
		return 0, err
	}
	return closed, nil
}
