package entity

import (
	"time"
)

// WatchStatus is the lifecycle state of a watchlist entry.
type WatchStatus string

const (
	// WatchStatusWatching marks an entry under active observation.
	WatchStatusWatching WatchStatus = "watching"
	// WatchStatusAlerted marks an entry that reached the target rate. Terminal.
	WatchStatusAlerted WatchStatus = "alerted"
	// WatchStatusExpired marks an entry whose watch window closed without an
	// alert, or that was removed manually. Terminal.
	WatchStatusExpired WatchStatus = "expired"
)

// Watchlist is one equity under observation. The daily check engine is the
// only writer once an entry is watching; terminal entries are immutable
// except for deletion through the history API.
type Watchlist struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	StockCode    string      `gorm:"not null;index" json:"stock_code"`
	StockName    string      `gorm:"not null" json:"stock_name"`
	EnrolledDate time.Time   `gorm:"type:date;not null" json:"enrolled_date"`
	D0LowPrice   int64       `gorm:"not null" json:"d0_low_price"`
	Status       WatchStatus `gorm:"not null;default:watching;index" json:"status"`
	AlertedAt    *time.Time  `json:"alerted_at,omitempty"`
	AlertDay     *int        `json:"alert_day,omitempty"`
	PeakRate     float64     `gorm:"not null;default:0" json:"peak_rate"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Watchlist) TableName() string {
	return "watchlist"
}
