package auth

import (
	"time"

	"gorm.io/datatypes"
)

// User is the account record. The premium flag gates event hosting and is
// only flipped by the billing module when an upgrade payment verifies.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	FullName     string `gorm:"type:varchar(100);not null" json:"full_name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`

	Bio         string         `gorm:"type:text" json:"bio,omitempty"`
	City        string         `gorm:"type:varchar(100);index" json:"city,omitempty"`
	HomeStation string         `gorm:"type:varchar(100)" json:"home_station,omitempty"`
	AvatarURL   string         `gorm:"type:text" json:"avatar_url,omitempty"`
	Interests   datatypes.JSON `gorm:"type:jsonb" json:"interests,omitempty"`

	IsPremium bool `gorm:"default:false" json:"is_premium"`
	// Opt-in for "new event in your city" emails.
	NotifyCityEvents bool `gorm:"default:true" json:"notify_city_events"`

	Status    string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Identity is the resolved caller identity threaded explicitly into every
// lifecycle operation. No component re-derives the current user mid-operation.
type Identity struct {
	UserID   uint
	FullName string
	City     string
	Premium  bool
}

// IdentityOf builds the Identity projection of a user record.
func IdentityOf(u *User) Identity {
	return Identity{
		UserID:   u.ID,
		FullName: u.FullName,
		City:     u.City,
		Premium:  u.IsPremium,
	}
}
