package repository

import (
	"context"
	"database/sql"
	"errors"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/watcher/dto"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchlistRepository defines the interface for watchlist data operations.
type WatchlistRepository interface {
	Create(ctx context.Context, entry *entity.Watchlist) error
	Update(ctx context.Context, entry *entity.Watchlist) error
	FindWatching(ctx context.Context) ([]entity.Watchlist, error)
	FindWatchingByCode(ctx context.Context, stockCode string) (*entity.Watchlist, error)
	FindAll(ctx context.Context, status entity.WatchStatus) ([]entity.Watchlist, error)
	FindLatestByCode(ctx context.Context, stockCode string) (*entity.Watchlist, error)
	FindFinished(ctx context.Context, status entity.WatchStatus) ([]entity.Watchlist, error)
	FindFinishedByID(ctx context.Context, id uint) (*entity.Watchlist, error)
	DeleteWithDailyPrices(ctx context.Context, entry *entity.Watchlist) error
	Summary(ctx context.Context) (*dto.DashboardSummary, error)
	NewDailyCheckBatch() DailyCheckBatch
}

// NewWatchlistRepository creates a new GORM-based watchlist repository.
func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

type watchlistRepository struct {
	db *gorm.DB
}

func (r *watchlistRepository) Create(ctx context.Context, entry *entity.Watchlist) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *watchlistRepository) Update(ctx context.Context, entry *entity.Watchlist) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// FindWatching loads the watching set in a stable order; the daily check
// relies on that order for deterministic reports.
func (r *watchlistRepository) FindWatching(ctx context.Context) ([]entity.Watchlist, error) {
	var entries []entity.Watchlist
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.WatchStatusWatching).
		Order("id asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *watchlistRepository) FindWatchingByCode(ctx context.Context, stockCode string) (*entity.Watchlist, error) {
	var entry entity.Watchlist
	err := r.db.WithContext(ctx).
		Where("stock_code = ? AND status = ?", stockCode, entity.WatchStatusWatching).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *watchlistRepository) FindAll(ctx context.Context, status entity.WatchStatus) ([]entity.Watchlist, error) {
	query := r.db.WithContext(ctx).Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var entries []entity.Watchlist
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *watchlistRepository) FindLatestByCode(ctx context.Context, stockCode string) (*entity.Watchlist, error) {
	var entry entity.Watchlist
	err := r.db.WithContext(ctx).
		Where("stock_code = ?", stockCode).
		Order("created_at desc").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *watchlistRepository) FindFinished(ctx context.Context, status entity.WatchStatus) ([]entity.Watchlist, error) {
	query := r.db.WithContext(ctx).Order("updated_at desc")
	if status == entity.WatchStatusAlerted || status == entity.WatchStatusExpired {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status IN ?", []entity.WatchStatus{entity.WatchStatusAlerted, entity.WatchStatusExpired})
	}
	var entries []entity.Watchlist
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *watchlistRepository) FindFinishedByID(ctx context.Context, id uint) (*entity.Watchlist, error) {
	var entry entity.Watchlist
	err := r.db.WithContext(ctx).
		Where("id = ? AND status IN ?", id, []entity.WatchStatus{entity.WatchStatusAlerted, entity.WatchStatusExpired}).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// DeleteWithDailyPrices removes a finished entry and its recorded prices in
// one transaction.
func (r *watchlistRepository) DeleteWithDailyPrices(ctx context.Context, entry *entity.Watchlist) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stock_code = ?", entry.StockCode).Delete(&entity.DailyPrice{}).Error; err != nil {
			return err
		}
		return tx.Delete(entry).Error
	})
}

func (r *watchlistRepository) Summary(ctx context.Context) (*dto.DashboardSummary, error) {
	var counts []struct {
		Status entity.WatchStatus
		Count  int
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Watchlist{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	summary := &dto.DashboardSummary{}
	for _, c := range counts {
		summary.TotalCount += c.Count
		switch c.Status {
		case entity.WatchStatusWatching:
			summary.WatchingCount = c.Count
		case entity.WatchStatusAlerted:
			summary.AlertedCount = c.Count
		case entity.WatchStatusExpired:
			summary.ExpiredCount = c.Count
		}
	}

	var avgPeak sql.NullFloat64
	err = r.db.WithContext(ctx).
		Model(&entity.Watchlist{}).
		Select("avg(peak_rate)").
		Scan(&avgPeak).Error
	if err != nil {
		return nil, err
	}
	if avgPeak.Valid {
		summary.AvgPeakRate = &avgPeak.Float64
	}

	return summary, nil
}

// DailyCheckBatch accumulates the mutations of one evaluation run and
// persists them as a single unit of work.
type DailyCheckBatch interface {
	SaveEntry(entry *entity.Watchlist)
	AppendObservation(obs *entity.DailyPrice)
	Commit(ctx context.Context) error
}

func (r *watchlistRepository) NewDailyCheckBatch() DailyCheckBatch {
	return &dailyCheckBatch{db: r.db}
}

type dailyCheckBatch struct {
	db           *gorm.DB
	entries      []*entity.Watchlist
	observations []*entity.DailyPrice
}

func (b *dailyCheckBatch) SaveEntry(entry *entity.Watchlist) {
	b.entries = append(b.entries, entry)
}

func (b *dailyCheckBatch) AppendObservation(obs *entity.DailyPrice) {
	b.observations = append(b.observations, obs)
}

// Commit writes all buffered observations and entry mutations atomically.
// Observations conflict-skip on (stock_code, trade_date) so a replayed run
// for the same date never duplicates them.
func (b *dailyCheckBatch) Commit(ctx context.Context) error {
	if len(b.entries) == 0 && len(b.observations) == 0 {
		return nil
	}
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, obs := range b.observations {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "stock_code"}, {Name: "trade_date"}},
				DoNothing: true,
			}).Create(obs).Error
			if err != nil {
				return err
			}
		}
		for _, entry := range b.entries {
			if err := tx.Save(entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
