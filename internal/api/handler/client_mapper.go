package handler

import (
	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

// --- Request → Service input ---

func toCreatePersonInput(req createPersonRequest, idempotencyKey string) (ports.CreatePersonInput, error) {
	birthdate, err := domain.ParseDate(req.Birthdate)
	if err != nil {
		return ports.CreatePersonInput{}, err
	}
	return ports.CreatePersonInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Birthdate:      birthdate,
		IdempotencyKey: idempotencyKey,
	}, nil
}

func toCreateCompanyInput(req createCompanyRequest, idempotencyKey string) ports.CreateCompanyInput {
	return ports.CreateCompanyInput{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		CompanyIdentifier: req.CompanyIdentifier,
		IdempotencyKey:    idempotencyKey,
	}
}

func toUpdateContactInput(id string, req updateClientRequest) ports.UpdateContactInput {
	return ports.UpdateContactInput{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
}

// --- Service result → HTTP response ---

func clientLocation(id string) string {
	return "/v1/clients/" + id
}

func toClientResponse(c *domain.Client) clientResponse {
	resp := clientResponse{
		ID:                c.ID,
		Type:              string(c.Variant),
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		CompanyIdentifier: c.CompanyIdentifier,
		CreatedAt:         c.CreatedAt.UTC(),
		UpdatedAt:         c.UpdatedAt.UTC(),
		Links: clientLinks{
			Self:      clientLocation(c.ID),
			Contracts: clientLocation(c.ID) + "/contracts/active",
		},
	}
	if c.Birthdate != nil {
		bd := c.Birthdate.Format(domain.DateLayout)
		resp.Birthdate = &bd
	}
	return resp
}

func toClientResponses(items []*domain.Client) []clientResponse {
	out := make([]clientResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toClientResponse(c))
	}
	return out
}

func toHistoryResponses(events []*domain.AuditEvent) []historyEventResponse {
	out := make([]historyEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, historyEventResponse{
			Action:     string(ev.Action),
			EntityID:   ev.EntityID,
			Actor:      ev.Actor,
			OccurredAt: ev.OccurredAt.UTC(),
			Details:    ev.Details,
		})
	}
	return out
}
