package entity

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// DailyCheckRun is the audit record of one scheduled evaluation run. Results
// holds the per-entry run report as JSON.
type DailyCheckRun struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RunDate      time.Time      `gorm:"type:date;not null;index" json:"run_date"`
	Status       string         `gorm:"not null" json:"status"`
	AlertsSent   int            `json:"alerts_sent"`
	ExpiredCount int            `json:"expired_count"`
	Results      datatypes.JSON `gorm:"type:jsonb" json:"results"`
	ErrorMessage sql.NullString `json:"error_message"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at"`
}

func (DailyCheckRun) TableName() string {
	return "daily_check_runs"
}
