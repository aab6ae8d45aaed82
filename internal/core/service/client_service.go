package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// ClientService is the client registry: creation of both variants, active
// lookups, contact updates, listing, and the soft-delete primitive.
type ClientService struct {
	sideEffects
	repo   ports.ClientRepository
	tx     ports.TxManager
	paging ports.Paging
	now    func() time.Time
}

func NewClientService(
	repo ports.ClientRepository,
	tx ports.TxManager,
	idem ports.IdempotencyStore,
	audit ports.AuditLog,
	paging ports.Paging,
	logger zerolog.Logger,
) *ClientService {
	return &ClientService{
		sideEffects: sideEffects{idem: idem, audit: audit, logger: logger},
		repo:        repo,
		tx:          tx,
		paging:      paging,
		now:         time.Now,
	}
}

// CreatePerson registers an individual. The email must not be used by any
// client, deleted or not.
func (s *ClientService) CreatePerson(ctx context.Context, in ports.CreatePersonInput) (*ports.ClientResult, error) {
	if res, ok := s.replay(ctx, scopePerson, in.IdempotencyKey); ok {
		return res, nil
	}

	now := s.now().UTC()
	client, err := domain.NewPerson(uuid.NewString(), domain.ContactInfo{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
	}, in.Birthdate, domain.DateOf(now), now)
	if err != nil {
		return nil, err
	}

	return s.create(ctx, scopePerson, in.IdempotencyKey, client)
}

// CreateCompany registers a company. Both the email and the company
// identifier must be unused.
func (s *ClientService) CreateCompany(ctx context.Context, in ports.CreateCompanyInput) (*ports.ClientResult, error) {
	if res, ok := s.replay(ctx, scopeCompany, in.IdempotencyKey); ok {
		return res, nil
	}

	now := s.now().UTC()
	client, err := domain.NewCompany(uuid.NewString(), domain.ContactInfo{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
	}, in.CompanyIdentifier, now)
	if err != nil {
		return nil, err
	}

	return s.create(ctx, scopeCompany, in.IdempotencyKey, client)
}

func (s *ClientService) create(ctx context.Context, scope, idempotencyKey string, client *domain.Client) (*ports.ClientResult, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, client)
	})
	if err != nil {
		s.logger.Info().Err(err).Str("variant", string(client.Variant)).Msg("client create rejected")
		return nil, err
	}

	s.remember(ctx, scope, idempotencyKey, client.ID)
	s.record(ctx, client.ID, client.ID, domain.ActionClientCreated, client.CreatedAt, map[string]string{
		"variant": string(client.Variant),
	})
	s.logger.Info().Str("client_id", client.ID).Str("variant", string(client.Variant)).Msg("client created")

	return &ports.ClientResult{Client: client}, nil
}

// replay returns the client an earlier create with the same key produced.
func (s *ClientService) replay(ctx context.Context, scope, key string) (*ports.ClientResult, bool) {
	id, found := s.lookup(ctx, scope, key)
	if !found {
		return nil, false
	}
	client, err := s.ReadActive(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("client_id", id).Msg("idempotent replay target unavailable, creating anyway")
		return nil, false
	}
	s.logger.Info().Str("idempotency_key", key).Str("client_id", id).Msg("idempotent replay")
	return &ports.ClientResult{Client: client, AlreadyExisted: true}, true
}

// ReadActive returns the client iff it exists and is not soft-deleted.
func (s *ClientService) ReadActive(ctx context.Context, id string) (*domain.Client, error) {
	if err := checkID("client", id); err != nil {
		return nil, err
	}
	return s.repo.FindActiveByID(ctx, id)
}

// ReadActiveForUpdate is ReadActive holding the row lock for the rest of the
// caller's transaction.
func (s *ClientService) ReadActiveForUpdate(ctx context.Context, id string) (*domain.Client, error) {
	if err := checkID("client", id); err != nil {
		return nil, err
	}
	return s.repo.LockActiveByID(ctx, id)
}

// UpdateContactInfo replaces name, email and phone of an active client.
// Birthdate and company identifier are never touched.
func (s *ClientService) UpdateContactInfo(ctx context.Context, in ports.UpdateContactInput) (*domain.Client, error) {
	contact := domain.ContactInfo{Name: in.Name, Email: in.Email, Phone: in.Phone}.Normalize()

	var updated *domain.Client
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.ReadActiveForUpdate(ctx, in.ID); err != nil {
			return err
		}
		if err := contact.Validate(); err != nil {
			return err
		}
		var err error
		updated, err = s.repo.UpdateContactInfo(ctx, in.ID, contact, s.now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, updated.ID, updated.ID, domain.ActionClientUpdated, updated.UpdatedAt, nil)
	s.logger.Info().Str("client_id", updated.ID).Msg("client contact info updated")
	return updated, nil
}

// ListActive returns one page of active clients in creation order.
func (s *ClientService) ListActive(ctx context.Context, in ports.ListClientsInput) (*ports.ListClientsResult, error) {
	page, size, offset := s.paging.Clamp(in.Page, in.Size)

	var (
		items []*domain.Client
		total int64
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		items, total, err = s.repo.ListActive(ctx, ports.ListClientsFilter{Limit: size, Offset: offset})
		return err
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list clients")
		return nil, err
	}

	return &ports.ListClientsResult{Items: items, Total: total, Page: page, Size: size}, nil
}

// SoftDelete marks an active client as deleted at the given instant. It does
// not touch contracts; see LifecycleService.DeleteClient.
func (s *ClientService) SoftDelete(ctx context.Context, id string, at time.Time) error {
	if err := checkID("client", id); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.MarkDeleted(ctx, id, at)
	})
}

// History returns the most recent audit events of a client, deleted or not.
func (s *ClientService) History(ctx context.Context, clientID string, limit int) ([]*domain.AuditEvent, error) {
	if err := checkID("client", clientID); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []*domain.AuditEvent{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.audit.ListByClient(ctx, clientID, limit)
}
