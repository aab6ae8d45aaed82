package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createPersonRequest struct {
	Name      string `json:"name"      validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Phone     string `json:"phone"     validate:"required,phone"`
	Birthdate string `json:"birthdate" validate:"required,datetime=2006-01-02"`
}

type createCompanyRequest struct {
	Name              string `json:"name"              validate:"required"`
	Email             string `json:"email"             validate:"required,email"`
	Phone             string `json:"phone"             validate:"required,phone"`
	CompanyIdentifier string `json:"companyIdentifier" validate:"required,company_identifier"`
}

// updateClientRequest carries only the mutable contact fields. Birthdate and
// company identifier are not part of it.
type updateClientRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone"`
}

// --- Response types ---

type clientLinks struct {
	Self      string `json:"self"`
	Contracts string `json:"contracts"`
}

type clientResponse struct {
	ID                string      `json:"id"`
	Type              string      `json:"type"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Phone             string      `json:"phone"`
	Birthdate         *string     `json:"birthdate,omitempty"`
	CompanyIdentifier *string     `json:"companyIdentifier,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	Links             clientLinks `json:"_links"`
}

type historyEventResponse struct {
	Action     string            `json:"action"`
	EntityID   string            `json:"entityId"`
	Actor      string            `json:"actor"`
	OccurredAt time.Time         `json:"occurredAt"`
	Details    map[string]string `json:"details,omitempty"`
}
