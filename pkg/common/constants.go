package common

const (
	RedisKeyLastPrice        = "last_price:%s"
	RedisKeyDashboardSummary = "dashboard:summary"

	SUCCESS = "SUCCESS"
	FAILED  = "FAILED"
	SKIPPED = "SKIPPED"
)
