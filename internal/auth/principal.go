package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eventboard/backend/internal/models"
)

// Principal is the authenticated identity for one request, rebuilt from token
// claims every time. A zero UserID means unauthenticated.
type Principal struct {
	UserID int64
	Email  string
	OrgID  string
	Roles  []models.Role
}

// IsAuthenticated reports whether the principal carries a real user identity.
func (p Principal) IsAuthenticated() bool { return p.UserID > 0 }

// HasRole reports whether the principal holds the given role.
func (p Principal) HasRole(role models.Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal holds the Admin role.
func (p Principal) IsAdmin() bool { return p.HasRole(models.RoleAdmin) }

// IsModerator reports whether the principal holds the Moderator role.
func (p Principal) IsModerator() bool { return p.HasRole(models.RoleModerator) }

// PrincipalFromClaims builds a Principal from validated JWT claims.
// The user ID comes from the subject claim and falls back to 0 (unauthenticated)
// when absent or unparseable. Roles are read from both the "role" and "roles"
// claims, deduplicated; values that are not known roles are dropped.
func PrincipalFromClaims(claims jwt.MapClaims) Principal {
	p := Principal{}

	if sub, err := claims.GetSubject(); err == nil {
		if id, err := strconv.ParseInt(sub, 10, 64); err == nil {
			p.UserID = id
		}
	}
	if email, ok := claims["email"].(string); ok {
		p.Email = email
	}
	if org, ok := claims["orgId"].(string); ok {
		p.OrgID = org
	}

	seen := make(map[models.Role]struct{})
	for _, name := range append(claimStrings(claims["role"]), claimStrings(claims["roles"])...) {
		role, ok := models.ParseRole(name)
		if !ok {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		p.Roles = append(p.Roles, role)
	}
	return p
}

// claimStrings normalizes a claim value that may be a single string or an
// array of strings (both shapes occur depending on how many roles were issued).
func claimStrings(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return val
	}
	return nil
}
