package repository

import (
	"context"

	"golang-stock-watchlist/internal/entity"

	"gorm.io/gorm"
)

// DailyPriceRepository defines read access to recorded daily prices.
type DailyPriceRepository interface {
	FindByStockCode(ctx context.Context, stockCode string) ([]entity.DailyPrice, error)
}

// NewDailyPriceRepository creates a new GORM-based daily price repository.
func NewDailyPriceRepository(db *gorm.DB) DailyPriceRepository {
	return &dailyPriceRepository{db: db}
}

type dailyPriceRepository struct {
	db *gorm.DB
}

func (r *dailyPriceRepository) FindByStockCode(ctx context.Context, stockCode string) ([]entity.DailyPrice, error) {
	var prices []entity.DailyPrice
	err := r.db.WithContext(ctx).
		Where("stock_code = ?", stockCode).
		Order("trade_date asc").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}
