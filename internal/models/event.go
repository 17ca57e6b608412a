package models

import (
	"strings"
	"time"
)

// EventStatus is the moderation state of an event.
type EventStatus string

const (
	StatusPending  EventStatus = "Pending"
	StatusApproved EventStatus = "Approved"
	StatusRejected EventStatus = "Rejected"
)

// ParseStatus maps a status string to an EventStatus, ignoring case.
// Unknown values return false; callers treat that as "no status filter".
func ParseStatus(s string) (EventStatus, bool) {
	switch strings.ToLower(s) {
	case "pending":
		return StatusPending, true
	case "approved":
		return StatusApproved, true
	case "rejected":
		return StatusRejected, true
	}
	return "", false
}

// Event represents an organization-scoped event. OrgID and CreatorID are set
// at creation time and never change. Tags are stored comma-joined in a single
// column; JoinTags/SplitTags define that boundary.
type Event struct {
	ID         int64       `json:"id"`
	OrgID      string      `json:"org_id"`
	CreatorID  int64       `json:"creator_id"`
	Title      string      `json:"title"`
	Category   string      `json:"category"`
	Status     EventStatus `json:"status"`
	IsFeatured bool        `json:"is_featured"`
	Tags       []string    `json:"tags"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// JoinTags serializes tags for storage as a comma-joined string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// SplitTags parses a stored tags column back into an ordered slice, trimming
// whitespace and dropping empty entries. Never returns nil so the wire
// representation is always an array.
func SplitTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
