package attendance

import (
	"time"
)

// Attendance is one user's reservation on one event. The composite
// unique index is the authority for the at-most-one-row rule; concurrent
// duplicate joins resolve at the database, not in application code.
type Attendance struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	EventID            uint      `gorm:"not null;uniqueIndex:idx_attendance_event_user" json:"event_id"`
	UserID             uint      `gorm:"not null;uniqueIndex:idx_attendance_event_user;index" json:"user_id"`
	Greeting           string    `gorm:"type:text" json:"greeting"`
	AfterPartyInterest bool      `gorm:"default:false" json:"after_party_interest"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// ============================
// Join Request
type JoinRequest struct {
	Greeting           string `json:"greeting,omitempty"`
	AfterPartyInterest bool   `json:"after_party_interest"`
}

// ============================
// Roster entry, enriched with the member's display name.
type RosterEntry struct {
	UserID             uint      `json:"user_id"`
	FullName           string    `json:"full_name"`
	Greeting           string    `json:"greeting"`
	AfterPartyInterest bool      `json:"after_party_interest"`
	CreatedAt          time.Time `json:"created_at"`
}
