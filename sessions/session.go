package sessions

import "time"

// RoleType is the role designator carried by an access token.
type RoleType string

const (
	RoleSuperAdmin RoleType = "super-admin"
)

// Session holds the claims decoded from the current access token.
// It only exists while the console is authenticated.
type Session struct {
	Subject   string   `json:"sub,omitempty"`   // Identifier of the signed-in administrator
	Email     string   `json:"email,omitempty"` // Email of the signed-in administrator
	Role      RoleType `json:"role_type"`       // Role used to gate sign-in
	ExpiresAt int64    `json:"exp"`             // Access token expiry (epoch seconds)
	IssuedAt  int64    `json:"iat,omitempty"`   // Access token issue time (epoch seconds)
}

// Expiry returns ExpiresAt as a time.Time.
func (s Session) Expiry() time.Time {
	return time.Unix(s.ExpiresAt, 0)
}

// HasRole reports whether the session carries the given role.
func (s Session) HasRole(role RoleType) bool {
	return s.Role == role
}
