package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

var errNotStubbed = errors.New("not stubbed")

type stubClientService struct {
	createPersonFn  func(ctx context.Context, in ports.CreatePersonInput) (*ports.ClientResult, error)
	createCompanyFn func(ctx context.Context, in ports.CreateCompanyInput) (*ports.ClientResult, error)
	readActiveFn    func(ctx context.Context, id string) (*domain.Client, error)
	updateFn        func(ctx context.Context, in ports.UpdateContactInput) (*domain.Client, error)
	listActiveFn    func(ctx context.Context, in ports.ListClientsInput) (*ports.ListClientsResult, error)
	historyFn       func(ctx context.Context, clientID string, limit int) ([]*domain.AuditEvent, error)
}

func (s *stubClientService) CreatePerson(ctx context.Context, in ports.CreatePersonInput) (*ports.ClientResult, error) {
	if s.createPersonFn == nil {
		return nil, errNotStubbed
	}
	return s.createPersonFn(ctx, in)
}

func (s *stubClientService) CreateCompany(ctx context.Context, in ports.CreateCompanyInput) (*ports.ClientResult, error) {
	if s.createCompanyFn == nil {
		return nil, errNotStubbed
	}
	return s.createCompanyFn(ctx, in)
}

func (s *stubClientService) ReadActive(ctx context.Context, id string) (*domain.Client, error) {
	if s.readActiveFn == nil {
		return &domain.Client{ID: id, Variant: domain.VariantPerson}, nil
	}
	return s.readActiveFn(ctx, id)
}

func (s *stubClientService) UpdateContactInfo(ctx context.Context, in ports.UpdateContactInput) (*domain.Client, error) {
	if s.updateFn == nil {
		return nil, errNotStubbed
	}
	return s.updateFn(ctx, in)
}

func (s *stubClientService) ListActive(ctx context.Context, in ports.ListClientsInput) (*ports.ListClientsResult, error) {
	if s.listActiveFn == nil {
		return nil, errNotStubbed
	}
	return s.listActiveFn(ctx, in)
}

func (s *stubClientService) History(ctx context.Context, clientID string, limit int) ([]*domain.AuditEvent, error) {
	if s.historyFn == nil {
		return nil, errNotStubbed
	}
	return s.historyFn(ctx, clientID, limit)
}

type stubLifecycleService struct {
	deleteFn func(ctx context.Context, id string) (int64, error)
}

func (s *stubLifecycleService) DeleteClient(ctx context.Context, id string) (int64, error) {
	if s.deleteFn == nil {
		return 0, errNotStubbed
	}
	return s.deleteFn(ctx, id)
}

type stubContractService struct {
	createFn      func(ctx context.Context, in ports.CreateContractInput) (*ports.ContractResult, error)
	getFn         func(ctx context.Context, id string) (*domain.Contract, error)
	updateFn      func(ctx context.Context, in ports.UpdateContractInput) (*domain.Contract, error)
	listActiveFn  func(ctx context.Context, clientID string, asOf time.Time) ([]*domain.Contract, error)
	listSinceFn   func(ctx context.Context, clientID string, since, asOf time.Time) ([]*domain.Contract, error)
	listForFn     func(ctx context.Context, clientID string, in ports.ListContractsInput) (*ports.ListContractsResult, error)
	sumFn         func(ctx context.Context, clientID string, asOf time.Time) (decimal.Decimal, error)
	closeActiveFn func(ctx context.Context, clientID string, asOf time.Time) (int64, error)
}

func (s *stubContractService) Create(ctx context.Context, in ports.CreateContractInput) (*ports.ContractResult, error) {
	if s.createFn == nil {
		return nil, errNotStubbed
	}
	return s.createFn(ctx, in)
}

func (s *stubContractService) Get(ctx context.Context, id string) (*domain.Contract, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(ctx, id)
}

func (s *stubContractService) Update(ctx context.Context, in ports.UpdateContractInput) (*domain.Contract, error) {
	if s.updateFn == nil {
		return nil, errNotStubbed
	}
	return s.updateFn(ctx, in)
}

func (s *stubContractService) ListActiveForClient(ctx context.Context, clientID string, asOf time.Time) ([]*domain.Contract, error) {
	if s.listActiveFn == nil {
		return nil, errNotStubbed
	}
	return s.listActiveFn(ctx, clientID, asOf)
}

func (s *stubContractService) ListActiveForClientSince(ctx context.Context, clientID string, since, asOf time.Time) ([]*domain.Contract, error) {
	if s.listSinceFn == nil {
		return nil, errNotStubbed
	}
	return s.listSinceFn(ctx, clientID, since, asOf)
}

func (s *stubContractService) ListForClient(ctx context.Context, clientID string, in ports.ListContractsInput) (*ports.ListContractsResult, error) {
	if s.listForFn == nil {
		return nil, errNotStubbed
	}
	return s.listForFn(ctx, clientID, in)
}

func (s *stubContractService) SumActiveCost(ctx context.Context, clientID string, asOf time.Time) (decimal.Decimal, error) {
	if s.sumFn == nil {
		return decimal.Zero, errNotStubbed
	}
	return s.sumFn(ctx, clientID, asOf)
}

func (s *stubContractService) CloseActiveContracts(ctx context.Context, clientID string, asOf time.Time) (int64, error) {
	if s.closeActiveFn == nil {
		return 0, errNotStubbed
	}
	return s.closeActiveFn(ctx, clientID, asOf)
}

const (
	testClientID   = "3f2b7c1e-8a4d-4e6f-9b0a-1c2d3e4f5a6b"
	otherClientID  = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	testContractID = "c0ffee00-1234-4abc-8def-000000000001"
)

// newTestContext builds an echo context with the validator installed and
// the claims the Auth middleware would set.
func newTestContext(t *testing.T, method, target string, body io.Reader, role, clientID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set("role", role)
		c.Set("client_id", clientID)
	}
	return c, rec
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("expected status %d, got %d (%v)", code, he.Code, he.Message)
	}
}

func personFixture(id string) *domain.Client {
	bd := time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	return &domain.Client{
		ID:        id,
		Variant:   domain.VariantPerson,
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		Phone:     "+41791234567",
		Birthdate: &bd,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func contractFixture(id, clientID string) *domain.Contract {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	return &domain.Contract{
		ID:             id,
		ClientID:       clientID,
		StartDate:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CostAmount:     decimal.RequireFromString("100.25"),
		LastUpdateDate: now,
		CreatedAt:      now,
	}
}
