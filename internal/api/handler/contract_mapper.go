package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

// --- Request → Service input ---

func toCreateContractInput(req createContractRequest, idempotencyKey string) (ports.CreateContractInput, error) {
	in := ports.CreateContractInput{
		ClientID:       req.ClientID,
		CostAmount:     req.CostAmount,
		IdempotencyKey: idempotencyKey,
	}
	if req.StartDate != "" {
		start, err := domain.ParseDate(req.StartDate)
		if err != nil {
			return in, err
		}
		in.StartDate = start
	}
	if req.EndDate != "" {
		end, err := domain.ParseDate(req.EndDate)
		if err != nil {
			return in, err
		}
		in.EndDate = &end
	}
	return in, nil
}

// --- Service result → HTTP response ---

func toContractResponse(c *domain.Contract) contractResponse {
	resp := contractResponse{
		ID:             c.ID,
		ClientID:       c.ClientID,
		StartDate:      c.StartDate.Format(domain.DateLayout),
		CostAmount:     c.CostAmount,
		LastUpdateDate: c.LastUpdateDate.UTC(),
		CreatedAt:      c.CreatedAt.UTC(),
	}
	if c.EndDate != nil {
		end := c.EndDate.Format(domain.DateLayout)
		resp.EndDate = &end
	}
	return resp
}

func toContractResponses(items []*domain.Contract) []contractResponse {
	out := make([]contractResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toContractResponse(c))
	}
	return out
}

func toActiveCostSumResponse(clientID string, asOf time.Time, total decimal.Decimal) activeCostSumResponse {
	return activeCostSumResponse{
		ClientID: clientID,
		AsOf:     asOf.Format(domain.DateLayout),
		Total:    total,
	}
}
