package repository

import (
	"context"

	"golang-stock-watchlist/internal/entity"

	"gorm.io/gorm"
)

// DailyCheckRunRepository persists the audit trail of evaluation runs.
type DailyCheckRunRepository interface {
	Create(ctx context.Context, run *entity.DailyCheckRun) error
	Update(ctx context.Context, run *entity.DailyCheckRun) error
	FindRecent(ctx context.Context, limit int) ([]entity.DailyCheckRun, error)
}

// NewDailyCheckRunRepository creates a new GORM-based run repository.
func NewDailyCheckRunRepository(db *gorm.DB) DailyCheckRunRepository {
	return &dailyCheckRunRepository{db: db}
}

type dailyCheckRunRepository struct {
	db *gorm.DB
}

func (r *dailyCheckRunRepository) Create(ctx context.Context, run *entity.DailyCheckRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *dailyCheckRunRepository) Update(ctx context.Context, run *entity.DailyCheckRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *dailyCheckRunRepository) FindRecent(ctx context.Context, limit int) ([]entity.DailyCheckRun, error) {
	var runs []entity.DailyCheckRun
	err := r.db.WithContext(ctx).
		Order("started_at desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
