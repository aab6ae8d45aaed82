package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

// --- Request types ---

type createContractRequest struct {
	ClientID   string          `json:"clientId"   validate:"required,uuid"`
	StartDate  string          `json:"startDate"  validate:"omitempty,datetime=2006-01-02"`
	EndDate    string          `json:"endDate"    validate:"omitempty,datetime=2006-01-02"`
	CostAmount decimal.Decimal `json:"costAmount" validate:"decimal_gt0"`
}

// updateContractRequest changes the cost amount. An empty body only bumps
// the last update date.
type updateContractRequest struct {
	CostAmount *decimal.Decimal `json:"costAmount" validate:"omitempty,decimal_gt0"`
}

// --- Response types ---

type contractResponse struct {
	ID             string          `json:"id"`
	ClientID       string          `json:"clientId"`
	StartDate      string          `json:"startDate"`
	EndDate        *string         `json:"endDate"`
	CostAmount     decimal.Decimal `json:"costAmount"`
	LastUpdateDate time.Time       `json:"lastUpdateDate"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type activeCostSumResponse struct {
	ClientID string          `json:"clientId"`
	AsOf     string          `json:"asOf"`
	Total    decimal.Decimal `json:"total"`
}
