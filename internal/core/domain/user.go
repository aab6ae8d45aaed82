package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// ValidRole reports whether role is one the API issues tokens for.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleClient
}

// User models an authenticated API actor. A user with RoleClient is bound to
// a single client record through ClientID.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	ClientID     string    `json:"client_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
