package auth

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(user *User) error
	FindByEmail(email string) (*User, error)
	FindByID(userID uint) (User, error)
	Update(user *User) error
	SetPremium(userID uint, premium bool) error

	// GetCitySubscribers returns active users in a city who opted into
	// new-event notifications, excluding the given user.
	GetCitySubscribers(city string, excludeUserID uint) ([]User, error)
	GetEmailsByUserIDs(userIDs []uint) ([]string, error)
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

// Create a new user
func (r *repository) Create(user *User) error {
	return r.db.Create(user).Error
}

// Find user by email (used in login)
func (r *repository) FindByEmail(email string) (*User, error) {
	var u User
	err := r.db.Where("email = ?", email).First(&u).Error
	return &u, err
}

// Find user by ID
func (r *repository) FindByID(userID uint) (User, error) {
	var user User
	err := r.db.First(&user, userID).Error
	return user, err
}

func (r *repository) Update(user *User) error {
	return r.db.Save(user).Error
}

func (r *repository) SetPremium(userID uint, premium bool) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Update("is_premium", premium).Error
}

func (r *repository) GetCitySubscribers(city string, excludeUserID uint) ([]User, error) {
	var users []User
	err := r.db.
		Where("city = ? AND notify_city_events = ? AND status = ? AND id <> ?",
			city, true, "active", excludeUserID).
		Find(&users).Error
	return users, err
}

func (r *repository) GetEmailsByUserIDs(userIDs []uint) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var emails []string
	err := r.db.
		Table("users").
		Select("users.email").
		Where("users.id IN ? AND users.status = ?", userIDs, "active").
		Scan(&emails).Error
	return emails, err
}
