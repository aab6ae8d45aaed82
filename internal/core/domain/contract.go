package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Contract is a dependent record of a client. It is never hard-deleted; it is
// closed by setting EndDate.
type Contract struct {
	ID             string
	ClientID       string
	StartDate      time.Time
	EndDate        *time.Time // nil = open-ended
	CostAmount     decimal.Decimal
	LastUpdateDate time.Time
	CreatedAt      time.Time
}

// IsActiveOn reports whether the contract is active as of the calendar date d:
// EndDate is absent or strictly after d. A contract ending on d is not active on d.
func (c *Contract) IsActiveOn(d time.Time) bool {
	if c.EndDate == nil {
		return true
	}
	return DateOf(*c.EndDate).After(DateOf(d))
}

// NewContract builds a contract. A zero startDate defaults to today.
func NewContract(id, clientID string, startDate time.Time, endDate *time.Time, cost decimal.Decimal, today, now time.Time) (*Contract, error) {
	if startDate.IsZero() {
		startDate = today
	}
	start := DateOf(startDate)

	var end *time.Time
	if endDate != nil {
		e := DateOf(*endDate)
		if e.Before(start) {
			return nil, fmt.Errorf("%w: endDate must be greater than or equal to startDate", ErrValidation)
		}
		end = &e
	}

	if err := ValidateCost(cost); err != nil {
		return nil, err
	}

	return &Contract{
		ID:             id,
		ClientID:       clientID,
		StartDate:      start,
		EndDate:        end,
		CostAmount:     cost,
		LastUpdateDate: now,
		CreatedAt:      now,
	}, nil
}

// ValidateCost requires a strictly positive amount.
func ValidateCost(cost decimal.Decimal) error {
	if !cost.IsPositive() {
		return fmt.Errorf("%w: costAmount must be positive", ErrValidation)
	}
	return nil
}
