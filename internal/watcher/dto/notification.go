package dto

import "time"

// AlertNotification carries the payload of a target-rate alert.
type AlertNotification struct {
	StockName    string
	StockCode    string
	EnrolledDate time.Time
	D0LowPrice   int64
	ClosePrice   int64
	ChangeRate   float64
	DayIndex     int
}

// ExpirationNotification carries the payload of a watch-window expiration.
type ExpirationNotification struct {
	StockName    string
	StockCode    string
	EnrolledDate time.Time
	D0LowPrice   int64
	PeakRate     float64
	DayIndex     int
}

// EnrollmentNotification carries the payload of a new enrollment.
type EnrollmentNotification struct {
	StockName    string
	StockCode    string
	EnrolledDate time.Time
	D0LowPrice   int64
	TargetPrice  int64
	TargetRate   float64
	WatchDays    int
}

// RemovalNotification carries the payload of a manual removal.
type RemovalNotification struct {
	StockName string
	StockCode string
}

// DailySummaryNotification carries the end-of-run summary counts.
type DailySummaryNotification struct {
	WatchingCount int
	AlertedToday  int
	ExpiredToday  int
}
