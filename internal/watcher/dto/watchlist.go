package dto

import "golang-stock-watchlist/internal/entity"

// CreateWatchlistRequest enrolls a stock by display name or exchange code.
type CreateWatchlistRequest struct {
	StockName string `json:"stock_name"`
}

// WatchlistDetailResponse bundles an entry with its recorded daily prices.
type WatchlistDetailResponse struct {
	Watchlist   entity.Watchlist    `json:"watchlist"`
	DailyPrices []entity.DailyPrice `json:"daily_prices"`
}

// DashboardSummary aggregates lifecycle counts across the whole watchlist.
type DashboardSummary struct {
	WatchingCount    int      `json:"watching_count"`
	AlertedCount     int      `json:"alerted_count"`
	ExpiredCount     int      `json:"expired_count"`
	TotalCount       int      `json:"total_count"`
	AvgPeakRate      *float64 `json:"avg_peak_rate"`
	AlertSuccessRate *float64 `json:"alert_success_rate"`
}
