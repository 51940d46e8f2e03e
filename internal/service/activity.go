package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/types"
)

// ActivityService persists and lists staff audit entries.
type ActivityService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewActivityService(db *gorm.DB, logger *zap.Logger) *ActivityService {
	return &ActivityService{db: db, logger: logger}
}

// Record appends an audit entry. Failures are logged, not surfaced: an audit
// write must never fail the request it describes.
func (s *ActivityService) Record(activity *model.StaffActivity) {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if err := s.db.Create(activity).Error; err != nil {
		s.logger.Error("failed to record staff activity",
			zap.String("action", activity.Action),
			zap.String("entity", activity.Entity),
			zap.Error(err))
	}
}

// List returns audit entries matching the filter, newest first, with the
// total count for pagination.
func (s *ActivityService) List(ctx context.Context, filter types.ActivityFilter) ([]model.StaffActivity, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.StaffActivity{})

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Entity != "" {
		query = query.Where("entity = ?", filter.Entity)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	var activities []model.StaffActivity
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&activities).Error
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}
