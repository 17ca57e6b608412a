package events

import (
	"strings"

	"github.com/eventboard/backend/internal/auth"
)

// Filter is the visibility predicate a listing runs under. Nil fields apply
// no restriction.
type Filter struct {
	CreatorID *int64
	OrgID     *string
}

// ResolveScope maps a requested scope and the caller's principal to a Filter.
//
// Scope matching is case-insensitive. When no scope is requested, admins and
// moderators default to their org, plain users to their own events. "mine"
// always restricts to the caller's events regardless of role. "all" is a
// global view for admins only; everyone else gets their org. Unrecognized
// scopes behave like "org".
func ResolveScope(scope string, p auth.Principal) Filter {
	if scope == "" {
		if p.IsAdmin() || p.IsModerator() {
			scope = "org"
		} else {
			scope = "mine"
		}
	}

	switch strings.ToLower(scope) {
	case "mine":
		creator := p.UserID
		return Filter{CreatorID: &creator}
	case "all":
		if p.IsAdmin() {
			return Filter{}
		}
	}

	org := p.OrgID
	return Filter{OrgID: &org}
}
