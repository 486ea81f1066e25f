package event

import (
	"time"
)

// Event status values. Cancellation is a one-way transition; rows are
// never physically deleted.
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Vibe tags describing an event's social tone.
const (
	VibeChill    = "chill"
	VibeSerious  = "serious"
	VibeLearning = "learning"
	VibeParty    = "party"
)

// ============================
// GORM Event Model
type Event struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	HostID        uint      `gorm:"not null;index" json:"host_id"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	City          string    `gorm:"type:varchar(100);not null;index" json:"city"`
	Category      string    `gorm:"type:varchar(100);not null;index" json:"category"`
	StartsAt      time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt        time.Time `gorm:"not null" json:"ends_at"`
	Vibe          string    `gorm:"type:varchar(20)" json:"vibe"`
	SoloFriendly  bool      `gorm:"default:false" json:"solo_friendly"`
	AfterParty    bool      `gorm:"default:false" json:"after_party"`
	LanguageLevel string    `gorm:"type:varchar(50)" json:"language_level"`
	CoverImageURL string    `gorm:"type:text" json:"cover_image_url"`
	JoinLink      string    `gorm:"type:text" json:"-"` // exposed only through EventView
	Status        string    `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	AttendeeCount int `gorm:"-" json:"attendee_count"`
}

func (Event) TableName() string {
	return "events"
}

// ============================
// Create Event Request
type CreateEventRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	City          string `json:"city" binding:"required"`
	Category      string `json:"category" binding:"required"`
	StartsAt      string `json:"starts_at" binding:"required"` // RFC 3339
	EndsAt        string `json:"ends_at,omitempty"`            // RFC 3339, defaults to starts_at + 2h
	Vibe          string `json:"vibe,omitempty"`
	SoloFriendly  bool   `json:"solo_friendly"`
	AfterParty    bool   `json:"after_party"`
	LanguageLevel string `json:"language_level,omitempty"`
	JoinLink      string `json:"join_link,omitempty"`
}

// ============================
// Read-side projection. JoinLink is populated only for callers holding a
// live attendance; host controls only for the host of a scheduled event.
type EventView struct {
	Event     Event   `json:"event"`
	Attending bool    `json:"attending"`
	IsHost    bool    `json:"is_host"`
	CanCancel bool    `json:"can_cancel"`
	JoinLink  *string `json:"join_link,omitempty"`
}

// ============================
// Discovery filter. Cancelled events are excluded unless IncludeCancelled
// is set (host/attendee views).
type ListFilter struct {
	City         string
	Category     string
	Vibe         string
	SoloFriendly *bool
	Search       string
	Limit        int
	Offset       int

	IncludeCancelled bool
}
