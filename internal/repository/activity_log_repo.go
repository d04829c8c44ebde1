package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/orbicityhub/cityhub-api/internal/models"
)

// ActivityLogFilter narrows activity log queries. Date bounds are inclusive.
type ActivityLogFilter struct {
	Page       int
	Limit      int
	UserID     *uint
	ActionType string
	Module     string
	StartDate  *time.Time
	EndDate    *time.Time
}

// ActivityLogRepository persists the append-only audit trail. Entries are
// never updated in place except for the one-shot rollback flag, and never
// deleted individually.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	GetByID(ctx context.Context, id uint) (models.ActivityLog, error)
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
	DistinctActionTypes(ctx context.Context) ([]string, error)
	DistinctModules(ctx context.Context) ([]string, error)
	// MarkRolledBack flips the rollback flag iff it is still unset, so at
	// most one concurrent rollback can succeed for a given entry. Returns
	// false when the flag was already set (or the row is gone).
	MarkRolledBack(ctx context.Context, id, userID uint, at time.Time) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) GetByID(ctx context.Context, id uint) (models.ActivityLog, error) {
	var entry models.ActivityLog
	err := r.db.WithContext(ctx).First(&entry, id).Error
	return entry, err
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.ActionType != "" {
		query = query.Where("action_type = ?", filter.ActionType)
	}

	if filter.Module != "" {
		query = query.Where("module = ?", filter.Module)
	}

	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}

	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.Limit
		query = query.Offset(offset).Limit(filter.Limit)
	}

	var entries []models.ActivityLog
	if err := query.Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *activityLogRepository) DistinctActionTypes(ctx context.Context) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Distinct().
		Order("action_type").
		Pluck("action_type", &values).Error
	return values, err
}

func (r *activityLogRepository) DistinctModules(ctx context.Context) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("module IS NOT NULL AND module <> ''").
		Distinct().
		Order("module").
		Pluck("module", &values).Error
	return values, err
}

func (r *activityLogRepository) MarkRolledBack(ctx context.Context, id, userID uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("id = ? AND rolled_back_at IS NULL", id).
		Updates(map[string]interface{}{
			"rolled_back_at": at,
			"rolled_back_by": userID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *activityLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at <= ?", cutoff).
		Delete(&models.ActivityLog{})
	return result.RowsAffected, result.Error
}
