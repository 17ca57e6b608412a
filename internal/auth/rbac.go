package auth

import "github.com/eventboard/backend/internal/models"

// CanManageEvent decides whether the identity (userID, orgID, roles) may
// mutate the given event. Admins manage any event in any org, moderators
// manage events inside their own org, plain users manage only events they
// created in their own org. Pure function, safe for bulk checks.
func CanManageEvent(userID int64, orgID string, roles []models.Role, ev *models.Event) bool {
	if containsRole(roles, models.RoleAdmin) {
		return true
	}
	if containsRole(roles, models.RoleModerator) {
		return ev.OrgID == orgID
	}
	return ev.OrgID == orgID && ev.CreatorID == userID
}

func containsRole(roles []models.Role, want models.Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
