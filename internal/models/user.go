package models

import "time"

// Role represents a user role within an organization.
type Role string

const (
	RoleUser      Role = "User"
	RoleModerator Role = "Moderator"
	RoleAdmin     Role = "Admin"
)

// ParseRole maps a role claim value to a Role. Unknown values return false;
// matching is case-sensitive because roles travel in token claims verbatim.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleModerator, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// User represents a platform user. Roles is a set: the user_roles table is
// keyed on (user_id, role) so duplicates cannot occur.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	OrgID        string    `json:"org_id"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoleStrings returns the user's roles as plain strings for claims and responses.
func (u *User) RoleStrings() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, string(r))
	}
	return out
}
