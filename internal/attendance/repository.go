package attendance

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the exclusive owner of attendance rows. It also serves
// as the lifecycle engine's Ledger: counts come from counting live rows,
// there is no stored counter to drift.
type Repository interface {
	InsertIfAbsent(ctx context.Context, a *Attendance) (created bool, err error)
	DeleteIfPresent(ctx context.Context, eventID, userID uint) (deleted bool, err error)
	CountForEvent(ctx context.Context, eventID uint) (int, error)
	ExistsFor(ctx context.Context, eventID, userID uint) (bool, error)
	LiveUserIDs(ctx context.Context, eventID uint) ([]uint, error)
	EventIDsForUser(ctx context.Context, userID uint) ([]uint, error)
	ListForEvent(ctx context.Context, eventID uint) ([]RosterEntry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// InsertIfAbsent relies on the (event_id, user_id) unique index: the
// losing writer of a concurrent duplicate join inserts zero rows and is
// reported as created=false.
func (r *repository) InsertIfAbsent(ctx context.Context, a *Attendance) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(a)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) DeleteIfPresent(ctx context.Context, eventID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&Attendance{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CountForEvent(ctx context.Context, eventID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return int(count), err
}

func (r *repository) ExistsFor(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) LiveUserIDs(ctx context.Context, eventID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("event_id = ?", eventID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *repository) EventIDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("user_id = ?", userID).
		Pluck("event_id", &ids).Error
	return ids, err
}

func (r *repository) ListForEvent(ctx context.Context, eventID uint) ([]RosterEntry, error) {
	var entries []RosterEntry
	err := r.db.WithContext(ctx).
		Table("attendances a").
		Select(`a.user_id, u.full_name, a.greeting, a.after_party_interest, a.created_at`).
		Joins("JOIN users u ON u.id = a.user_id").
		Where("a.event_id = ?", eventID).
		Order("a.created_at ASC").
		Find(&entries).Error
	return entries, err
}
