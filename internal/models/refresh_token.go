package models

import "time"

// RefreshToken is a long-lived opaque token persisted per issued session.
// Rows are effectively immutable once written; only RevokedAt may be set.
type RefreshToken struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Token     string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// IsActive reports whether the token can still be redeemed.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}
