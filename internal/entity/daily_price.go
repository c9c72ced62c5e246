package entity

import "time"

// DailyPrice is one recorded candle for one entry on one trade date. The
// engine only ever appends; the unique index on (stock_code, trade_date)
// makes replayed runs idempotent.
type DailyPrice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StockCode  string    `gorm:"not null;uniqueIndex:ux_daily_code_date" json:"stock_code"`
	TradeDate  time.Time `gorm:"type:date;not null;uniqueIndex:ux_daily_code_date" json:"trade_date"`
	OpenPrice  *int64    `json:"open_price"`
	HighPrice  *int64    `json:"high_price"`
	LowPrice   *int64    `json:"low_price"`
	ClosePrice *int64    `json:"close_price"`
	Volume     *int64    `json:"volume"`
	DayIndex   *int      `json:"day_index"`
	ChangeRate *float64  `json:"change_rate"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DailyPrice) TableName() string {
	return "daily_prices"
}
