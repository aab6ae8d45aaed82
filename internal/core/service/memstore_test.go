package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

// memStore is an in-memory stand-in for the relational store. Transactions
// are serialized and rolled back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	clients   map[string]*domain.Client
	contracts map[string]*domain.Contract

	// failures injected by tests
	failCloseActive error
	failMarkDeleted error

	sumCalls      int
	rolledBack    int
	listActiveCnt int
	lockCalls     int
}

func newMemStore() *memStore {
	return &memStore{
		clients:   make(map[string]*domain.Client),
		contracts: make(map[string]*domain.Contract),
	}
}

func cloneClient(c *domain.Client) *domain.Client {
	out := *c
	if c.Birthdate != nil {
		bd := *c.Birthdate
		out.Birthdate = &bd
	}
	if c.CompanyIdentifier != nil {
		ci := *c.CompanyIdentifier
		out.CompanyIdentifier = &ci
	}
	if c.DeletedAt != nil {
		d := *c.DeletedAt
		out.DeletedAt = &d
	}
	return &out
}

func cloneContract(c *domain.Contract) *domain.Contract {
	out := *c
	if c.EndDate != nil {
		e := *c.EndDate
		out.EndDate = &e
	}
	return &out
}

type memSnapshot struct {
	clients   map[string]*domain.Client
	contracts map[string]*domain.Contract
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		clients:   make(map[string]*domain.Client, len(s.clients)),
		contracts: make(map[string]*domain.Contract, len(s.contracts)),
	}
	for id, c := range s.clients {
		snap.clients[id] = cloneClient(c)
	}
	for id, c := range s.contracts {
		snap.contracts[id] = cloneContract(c)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = snap.clients
	s.contracts = snap.contracts
	s.rolledBack++
}

type memTxKey struct{}

// WithinTx implements ports.TxManager.
func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memClientRepo struct{ *memStore }

func (r memClientRepo) Create(_ context.Context, c *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.clients {
		if existing.Email == c.Email {
			return fmt.Errorf("%w: email already in use", domain.ErrConflict)
		}
		if c.CompanyIdentifier != nil && existing.CompanyIdentifier != nil && *existing.CompanyIdentifier == *c.CompanyIdentifier {
			return fmt.Errorf("%w: company identifier already in use", domain.ErrConflict)
		}
	}
	r.clients[c.ID] = cloneClient(c)
	return nil
}

func (r memClientRepo) FindActiveByID(_ context.Context, id string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || !c.IsActive() {
		return nil, fmt.Errorf("%w: client %s", domain.ErrNotFound, id)
	}
	return cloneClient(c), nil
}

func (r memClientRepo) LockActiveByID(ctx context.Context, id string) (*domain.Client, error) {
	r.mu.Lock()
	r.lockCalls++
	r.mu.Unlock()
	return r.FindActiveByID(ctx, id)
}

func (r memClientRepo) UpdateContactInfo(_ context.Context, id string, contact domain.ContactInfo, at time.Time) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || !c.IsActive() {
		return nil, fmt.Errorf("%w: client %s", domain.ErrNotFound, id)
	}
	for otherID, other := range r.clients {
		if otherID != id && other.Email == contact.Email {
			return nil, fmt.Errorf("%w: email already in use", domain.ErrConflict)
		}
	}
	c.Name, c.Email, c.Phone, c.UpdatedAt = contact.Name, contact.Email, contact.Phone, at
	return cloneClient(c), nil
}

func (r memClientRepo) MarkDeleted(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMarkDeleted != nil {
		return r.failMarkDeleted
	}
	c, ok := r.clients[id]
	if !ok || !c.IsActive() {
		return fmt.Errorf("%w: client %s", domain.ErrNotFound, id)
	}
	c.DeletedAt = &at
	c.UpdatedAt = at
	return nil
}

func (r memClientRepo) ListActive(_ context.Context, filter ports.ListClientsFilter) ([]*domain.Client, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []*domain.Client
	for _, c := range r.clients {
		if c.IsActive() {
			active = append(active, cloneClient(c))
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].ID < active[j].ID
		}
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return window(active, filter.Offset, filter.Limit), int64(len(active)), nil
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type memContractRepo struct{ *memStore }

func (r memContractRepo) Create(_ context.Context, c *domain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[c.ID] = cloneContract(c)
	return nil
}

func (r memContractRepo) FindByID(_ context.Context, id string) (*domain.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return nil, fmt.Errorf("%w: contract %s", domain.ErrNotFound, id)
	}
	return cloneContract(c), nil
}

func (r memContractRepo) LockByID(ctx context.Context, id string) (*domain.Contract, error) {
	return r.FindByID(ctx, id)
}

func (r memContractRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal, at time.Time) (*domain.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return nil, fmt.Errorf("%w: contract %s", domain.ErrNotFound, id)
	}
	c.CostAmount = cost
	c.LastUpdateDate = at
	return cloneContract(c), nil
}

func (r memContractRepo) activeOf(clientID string, asOf time.Time) []*domain.Contract {
	var out []*domain.Contract
	for _, c := range r.contracts {
		if c.ClientID == clientID && c.IsActiveOn(asOf) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memContractRepo) ListActive(_ context.Context, filter ports.ActiveContractsFilter) ([]*domain.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listActiveCnt++
	out := []*domain.Contract{}
	for _, c := range r.activeOf(filter.ClientID, filter.AsOf) {
		if filter.UpdatedSince != nil && c.LastUpdateDate.Before(*filter.UpdatedSince) {
			continue
		}
		out = append(out, cloneContract(c))
	}
	return out, nil
}

func (r memContractRepo) ListByClient(_ context.Context, clientID string, limit, offset int) ([]*domain.Contract, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Contract
	for _, c := range r.contracts {
		if c.ClientID == clientID {
			all = append(all, cloneContract(c))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return window(all, offset, limit), int64(len(all)), nil
}

func (r memContractRepo) SumActiveCost(_ context.Context, clientID string, asOf time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sumCalls++
	sum := decimal.Zero
	for _, c := range r.activeOf(clientID, asOf) {
		sum = sum.Add(c.CostAmount)
	}
	return sum, nil
}

func (r memContractRepo) CloseActive(_ context.Context, clientID string, asOf, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCloseActive != nil {
		return 0, r.failCloseActive
	}
	var n int64
	for _, c := range r.activeOf(clientID, asOf) {
		end := asOf
		c.EndDate = &end
		c.LastUpdateDate = at
		n++
	}
	return n, nil
}

type memIdempotency struct {
	mu      sync.Mutex
	keys    map[string]string
	failing error
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{keys: make(map[string]string)}
}

func (m *memIdempotency) Lookup(_ context.Context, scope, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return "", false, m.failing
	}
	id, ok := m.keys[scope+":"+key]
	return id, ok, nil
}

func (m *memIdempotency) Remember(_ context.Context, scope, key, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}
	m.keys[scope+":"+key] = id
	return nil
}

type memAudit struct {
	mu      sync.Mutex
	events  []*domain.AuditEvent
	failing error
}

func (m *memAudit) Record(_ context.Context, ev *domain.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *memAudit) ListByClient(_ context.Context, clientID string, limit int) ([]*domain.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.AuditEvent{}
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if m.events[i].ClientID == clientID {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

func (m *memAudit) actions(clientID string) []domain.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditAction
	for _, ev := range m.events {
		if ev.ClientID == clientID {
			out = append(out, ev.Action)
		}
	}
	return out
}

var errStoreDown = errors.New("store unavailable")

// testClock is a settable service clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store     *memStore
	idem      *memIdempotency
	audit     *memAudit
	clock     *testClock
	clients   *ClientService
	contracts *ContractService
	lifecycle *LifecycleService
}

func newFixture() *fixture {
	store := newMemStore()
	idem := newMemIdempotency()
	audit := &memAudit{}
	clock := &testClock{now: time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)}
	paging := ports.Paging{DefaultSize: 20, MaxSize: 200}
	logger := zerolog.Nop()

	clients := NewClientService(memClientRepo{store}, store, idem, audit, paging, logger)
	clients.now = clock.Now
	contracts := NewContractService(memContractRepo{store}, clients, store, idem, audit, paging, logger)
	contracts.now = clock.Now
	lifecycle := NewLifecycleService(clients, contracts, store, audit, logger)
	lifecycle.now = clock.Now

	return &fixture{
		store:     store,
		idem:      idem,
		audit:     audit,
		clock:     clock,
		clients:   clients,
		contracts: contracts,
		lifecycle: lifecycle,
	}
}

func (f *fixture) today() time.Time {
	return domain.DateOf(f.clock.Now())
}

// day returns today shifted by n calendar days.
func (f *fixture) day(n int) time.Time {
	return f.today().AddDate(0, 0, n)
}
