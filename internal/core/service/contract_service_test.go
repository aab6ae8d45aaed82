package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

func (f *fixture) mustContract(t *testing.T, clientID string, start time.Time, end *time.Time, cost string) *domain.Contract {
	t.Helper()
	res, err := f.contracts.Create(context.Background(), ports.CreateContractInput{
		ClientID:   clientID,
		StartDate:  start,
		EndDate:    end,
		CostAmount: decimal.RequireFromString(cost),
	})
	if err != nil {
		t.Fatalf("Create contract returned error: %v", err)
	}
	return res.Contract
}

func datePtr(t time.Time) *time.Time { return &t }

func TestContractService_Create_DefaultsStartToToday(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")

	contract := f.mustContract(t, c.ID, time.Time{}, nil, "100.50")
	if !contract.StartDate.Equal(f.today()) {
		t.Fatalf("expected start %s, got %s", f.today(), contract.StartDate)
	}
	if contract.EndDate != nil {
		t.Fatalf("expected open-ended contract")
	}
	if !contract.LastUpdateDate.Equal(f.clock.Now()) {
		t.Fatalf("expected last update %s, got %s", f.clock.Now(), contract.LastUpdateDate)
	}
}

func TestContractService_Create_EndBeforeStart(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")

	_, err := f.contracts.Create(context.Background(), ports.CreateContractInput{
		ClientID:   c.ID,
		StartDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    datePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		CostAmount: decimal.NewFromInt(10),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "endDate must be greater than or equal to startDate") {
		t.Fatalf("unexpected message: %v", err)
	}
	if len(f.store.contracts) != 0 {
		t.Fatalf("expected no contract stored")
	}
}

func TestContractService_Create_NonPositiveCost(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")

	for _, cost := range []string{"0", "-1.25"} {
		_, err := f.contracts.Create(context.Background(), ports.CreateContractInput{
			ClientID: c.ID, CostAmount: decimal.RequireFromString(cost),
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("cost %s: expected ErrValidation, got %v", cost, err)
		}
	}
}

func TestContractService_Create_RequiresActiveClient(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")
	if _, err := f.lifecycle.DeleteClient(context.Background(), c.ID); err != nil {
		t.Fatalf("DeleteClient returned error: %v", err)
	}

	for _, id := range []string{c.ID, "0b7b8a8e-0a6a-4e59-8f7e-3c1f0f2f4d11"} {
		_, err := f.contracts.Create(context.Background(), ports.CreateContractInput{
			ClientID: id, CostAmount: decimal.NewFromInt(10),
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("client %s: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestContractService_Create_LocksOwningClient(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")
	before := f.store.lockCalls

	f.mustContract(t, c.ID, time.Time{}, nil, "10")

	if got := f.store.lockCalls - before; got != 1 {
		t.Fatalf("expected client row locked once on create, got %d", got)
	}
}

func TestContractService_Create_Idempotent(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")
	in := ports.CreateContractInput{ClientID: c.ID, CostAmount: decimal.NewFromInt(10), IdempotencyKey: "k1"}

	first, err := f.contracts.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := f.contracts.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("replayed create failed: %v", err)
	}
	if !second.AlreadyExisted || second.Contract.ID != first.Contract.ID {
		t.Fatalf("expected replay of %s, got %+v", first.Contract.ID, second)
	}
	if len(f.store.contracts) != 1 {
		t.Fatalf("expected one stored contract, got %d", len(f.store.contracts))
	}
}

func TestContractService_Update(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")
	contract := f.mustContract(t, c.ID, time.Time{}, nil, "10")
	f.clock.Advance(time.Hour)

	newCost := decimal.RequireFromString("42.75")
	updated, err := f.contracts.Update(context.Background(), ports.UpdateContractInput{ID: contract.ID, CostAmount: &newCost})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !updated.CostAmount.Equal(newCost) {
		t.Fatalf("expected cost %s, got %s", newCost, updated.CostAmount)
	}
	if !updated.LastUpdateDate.After(contract.LastUpdateDate) {
		t.Fatalf("expected last update date to advance")
	}
	if !updated.StartDate.Equal(contract.StartDate) {
		t.Fatalf("start date changed")
	}

	f.clock.Advance(time.Hour)
	bumped, err := f.contracts.Update(context.Background(), ports.UpdateContractInput{ID: contract.ID})
	if err != nil {
		t.Fatalf("Update without cost returned error: %v", err)
	}
	if !bumped.CostAmount.Equal(newCost) || !bumped.LastUpdateDate.After(updated.LastUpdateDate) {
		t.Fatalf("expected only last update date to change, got %+v", bumped)
	}
}

func TestContractService_Update_Errors(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")
	contract := f.mustContract(t, c.ID, time.Time{}, nil, "10")

	zero := decimal.Zero
	if _, err := f.contracts.Update(context.Background(), ports.UpdateContractInput{ID: contract.ID, CostAmount: &zero}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.contracts.Update(context.Background(), ports.UpdateContractInput{ID: "0b7b8a8e-0a6a-4e59-8f7e-3c1f0f2f4d11"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContractService_Update_OwnerDeleted(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")
	contract := f.mustContract(t, c.ID, time.Time{}, nil, "10")
	if _, err := f.lifecycle.DeleteClient(context.Background(), c.ID); err != nil {
		t.Fatalf("DeleteClient returned error: %v", err)
	}

	cost := decimal.NewFromInt(11)
	updated, err := f.contracts.Update(context.Background(), ports.UpdateContractInput{ID: contract.ID, CostAmount: &cost})
	if err != nil {
		t.Fatalf("expected update of a deleted client's contract to succeed, got %v", err)
	}
	if updated.EndDate == nil || !updated.EndDate.Equal(f.today()) {
		t.Fatalf("expected contract closed today, got %v", updated.EndDate)
	}
}

func TestContractService_ActivePredicate(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")

	open := f.mustContract(t, c.ID, f.day(-30), nil, "1")
	endsTomorrow := f.mustContract(t, c.ID, f.day(-30), datePtr(f.day(1)), "2")
	f.mustContract(t, c.ID, f.day(-30), datePtr(f.today()), "4")
	f.mustContract(t, c.ID, f.day(-30), datePtr(f.day(-1)), "8")

	active, err := f.contracts.ListActiveForClient(context.Background(), c.ID, time.Time{})
	if err != nil {
		t.Fatalf("ListActiveForClient returned error: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active contracts, got %d", len(active))
	}
	ids := map[string]bool{active[0].ID: true, active[1].ID: true}
	if !ids[open.ID] || !ids[endsTomorrow.ID] {
		t.Fatalf("unexpected active set: %v", ids)
	}

	sum, err := f.contracts.SumActiveCost(context.Background(), c.ID, time.Time{})
	if err != nil {
		t.Fatalf("SumActiveCost returned error: %v", err)
	}
	if !sum.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected sum 3, got %s", sum)
	}

	tomorrow, err := f.contracts.ListActiveForClient(context.Background(), c.ID, f.day(1))
	if err != nil {
		t.Fatalf("ListActiveForClient returned error: %v", err)
	}
	if len(tomorrow) != 1 || tomorrow[0].ID != open.ID {
		t.Fatalf("expected only the open contract tomorrow, got %d", len(tomorrow))
	}
}

func TestContractService_SumActiveCost_ZeroWhenNone(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")

	sum, err := f.contracts.SumActiveCost(context.Background(), c.ID, time.Time{})
	if err != nil {
		t.Fatalf("SumActiveCost returned error: %v", err)
	}
	if !sum.Equal(decimal.Zero) {
		t.Fatalf("expected 0, got %s", sum)
	}
	if f.store.sumCalls != 1 || f.store.listActiveCnt != 0 {
		t.Fatalf("expected sum pushed to the store, got %d sum calls and %d list calls", f.store.sumCalls, f.store.listActiveCnt)
	}
}

func TestContractService_ListActiveForClientSince(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")
	old := f.mustContract(t, c.ID, time.Time{}, nil, "1")
	f.clock.Advance(2 * time.Hour)
	since := f.clock.Now()
	recent := f.mustContract(t, c.ID, time.Time{}, nil, "2")

	got, err := f.contracts.ListActiveForClientSince(context.Background(), c.ID, since, time.Time{})
	if err != nil {
		t.Fatalf("ListActiveForClientSince returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != recent.ID {
		t.Fatalf("expected only the recent contract, got %d", len(got))
	}

	cost := decimal.NewFromInt(5)
	f.clock.Advance(time.Minute)
	if _, err := f.contracts.Update(context.Background(), ports.UpdateContractInput{ID: old.ID, CostAmount: &cost}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	got, err = f.contracts.ListActiveForClientSince(context.Background(), c.ID, since, time.Time{})
	if err != nil {
		t.Fatalf("ListActiveForClientSince returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected updated contract to match, got %d", len(got))
	}
}

func TestContractService_CloseActiveContracts_Twice(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")
	f.mustContract(t, c.ID, f.day(-10), nil, "1")
	f.mustContract(t, c.ID, f.day(-10), datePtr(f.day(3)), "1")

	first, err := f.contracts.CloseActiveContracts(context.Background(), c.ID, time.Time{})
	if err != nil {
		t.Fatalf("CloseActiveContracts returned error: %v", err)
	}
	if first != 2 {
		t.Fatalf("expected 2 closed, got %d", first)
	}
	second, err := f.contracts.CloseActiveContracts(context.Background(), c.ID, time.Time{})
	if err != nil {
		t.Fatalf("CloseActiveContracts returned error: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected 0 closed on second run, got %d", second)
	}
}

func TestContractService_ListForClient(t *testing.T) {
	f := newFixture()
	c := f.mustPerson(t, "ada@example.com")
	for i := 0; i < 3; i++ {
		f.mustContract(t, c.ID, f.day(-10), datePtr(f.day(-5)), "1")
		f.clock.Advance(time.Second)
	}

	res, err := f.contracts.ListForClient(context.Background(), c.ID, ports.ListContractsInput{Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("ListForClient returned error: %v", err)
	}
	if res.Total != 3 || len(res.Items) != 1 {
		t.Fatalf("expected 1 of 3, got %d of %d", len(res.Items), res.Total)
	}
}
