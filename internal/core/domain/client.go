package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ClientVariant tags which kind of client a record is. It is fixed at creation.
type ClientVariant string

const (
	VariantPerson  ClientVariant = "PERSON"
	VariantCompany ClientVariant = "COMPANY"
)

// Valid reports whether v is a known variant.
func (v ClientVariant) Valid() bool {
	return v == VariantPerson || v == VariantCompany
}

// companyIdentifierPattern matches three letters, a hyphen and three digits.
// Letters are matched case-insensitively; the stored form is upper case.
var companyIdentifierPattern = regexp.MustCompile(`^[A-Za-z]{3}-[0-9]{3}$`)

// Client is the shared base record for both variants. Exactly one of
// Birthdate (PERSON) and CompanyIdentifier (COMPANY) is set.
type Client struct {
	ID                string
	Variant           ClientVariant
	Name              string
	Email             string
	Phone             string
	Birthdate         *time.Time
	CompanyIdentifier *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// IsActive reports whether the client has not been soft-deleted.
func (c *Client) IsActive() bool {
	return c.DeletedAt == nil
}

// ContactInfo groups the only fields that may change after creation.
type ContactInfo struct {
	Name  string
	Email string
	Phone string
}

// Normalize trims all fields and lower-cases the email.
func (ci ContactInfo) Normalize() ContactInfo {
	return ContactInfo{
		Name:  strings.TrimSpace(ci.Name),
		Email: strings.ToLower(strings.TrimSpace(ci.Email)),
		Phone: strings.TrimSpace(ci.Phone),
	}
}

// Validate checks that every contact field is present.
func (ci ContactInfo) Validate() error {
	switch {
	case ci.Name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case ci.Email == "":
		return fmt.Errorf("%w: email is required", ErrValidation)
	case ci.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	return nil
}

// NewPerson builds a PERSON client. birthdate must be strictly before today.
func NewPerson(id string, contact ContactInfo, birthdate, today, now time.Time) (*Client, error) {
	contact = contact.Normalize()
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	if birthdate.IsZero() {
		return nil, fmt.Errorf("%w: birthdate is required", ErrValidation)
	}
	bd := DateOf(birthdate)
	if !bd.Before(DateOf(today)) {
		return nil, fmt.Errorf("%w: birthdate must be in the past", ErrValidation)
	}
	return &Client{
		ID:        id,
		Variant:   VariantPerson,
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Birthdate: &bd,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewCompany builds a COMPANY client with a canonical company identifier.
func NewCompany(id string, contact ContactInfo, companyIdentifier string, now time.Time) (*Client, error) {
	contact = contact.Normalize()
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	canonical, err := CanonicalCompanyIdentifier(companyIdentifier)
	if err != nil {
		return nil, err
	}
	return &Client{
		ID:                id,
		Variant:           VariantCompany,
		Name:              contact.Name,
		Email:             contact.Email,
		Phone:             contact.Phone,
		CompanyIdentifier: &canonical,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// CanonicalCompanyIdentifier validates s against the AAA-123 pattern and
// returns it upper-cased.
func CanonicalCompanyIdentifier(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: companyIdentifier is required", ErrValidation)
	}
	if !companyIdentifierPattern.MatchString(s) {
		return "", fmt.Errorf("%w: invalid company identifier format (e.g. AAA-123)", ErrValidation)
	}
	return strings.ToUpper(s), nil
}
