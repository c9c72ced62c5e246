package dto

import "time"

// DailyCheckResult is the outcome of evaluating a single watchlist entry.
// Status is one of common.SUCCESS, common.SKIPPED, common.FAILED; Transition
// is set to the new lifecycle status when the entry left the watching state.
type DailyCheckResult struct {
	StockCode  string `json:"stock_code"`
	Status     string `json:"status"`
	Transition string `json:"transition,omitempty"`
	Errors     string `json:"errors,omitempty"`
}

// DailyCheckReport is the first-class run report of one evaluation run.
type DailyCheckReport struct {
	RunDate      time.Time          `json:"run_date"`
	AlertsSent   int                `json:"alerts_sent"`
	ExpiredCount int                `json:"expired_count"`
	Results      []DailyCheckResult `json:"results"`
}
