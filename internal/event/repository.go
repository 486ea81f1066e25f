package event

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kizunalink/kizuna-backend/internal/domain"
)

// Repository owns durable Event rows. Attendance rows live in their own
// ledger; this surface never touches them directly.
type Repository interface {
	Insert(e *Event) error
	FetchByID(id uint) (*Event, error)
	FetchByIDs(ids []uint) ([]Event, error)
	FetchByFilter(filter ListFilter) ([]Event, error)
	FetchByHost(hostID uint) ([]Event, error)
	UpdateStatus(id uint, status string) error
	UpdateCoverImage(id uint, url string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(e *Event) error {
	return r.db.Create(e).Error
}

func (r *repository) FetchByID(id uint) (*Event, error) {
	var e Event
	if err := r.db.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) FetchByIDs(ids []uint) ([]Event, error) {
	var events []Event
	if len(ids) == 0 {
		return events, nil
	}
	err := r.db.Where("id IN ?", ids).Order("starts_at ASC").Find(&events).Error
	return events, err
}

// FetchByFilter lists events for discovery. Cancelled events never show
// up unless the filter explicitly asks for them.
func (r *repository) FetchByFilter(filter ListFilter) ([]Event, error) {
	var events []Event

	query := r.db.Model(&Event{})
	if !filter.IncludeCancelled {
		query = query.Where("status = ?", StatusScheduled)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Vibe != "" {
		query = query.Where("vibe = ?", filter.Vibe)
	}
	if filter.SoloFriendly != nil {
		query = query.Where("solo_friendly = ?", *filter.SoloFriendly)
	}
	if filter.Search != "" {
		ilike := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", ilike, ilike)
	}

	err := query.
		Order("starts_at ASC").
		Limit(clampLimit(filter.Limit)).
		Offset(filter.Offset).
		Find(&events).Error

	return events, err
}

// clampLimit applies the default page size and the hard cap of 100 rows.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	default:
		return limit
	}
}

func (r *repository) FetchByHost(hostID uint) ([]Event, error) {
	var events []Event
	err := r.db.Where("host_id = ?", hostID).Order("starts_at ASC").Find(&events).Error
	return events, err
}

func (r *repository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&Event{}).Where("id = ?", id).Update("status", status).Error
}

func (r *repository) UpdateCoverImage(id uint, url string) error {
	return r.db.Model(&Event{}).Where("id = ?", id).Update("cover_image_url", url).Error
}
