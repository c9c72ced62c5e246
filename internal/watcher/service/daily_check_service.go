package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/watcher/dto"
	"golang-stock-watchlist/internal/watcher/repository"
	"golang-stock-watchlist/pkg/common"
	"golang-stock-watchlist/pkg/logger"
	redisPkg "golang-stock-watchlist/pkg/redis"
	"golang-stock-watchlist/pkg/utils"
)

// DailyCheckService is the evaluation engine: it re-prices every watching
// entry once per business day and moves entries through their lifecycle.
type DailyCheckService interface {
	RunDailyCheck(ctx context.Context, today time.Time) (*dto.DailyCheckReport, error)
}

// NewDailyCheckService creates the engine. targetRate is the alert threshold
// in percent, watchDays the observation window in business days; both are
// fixed at construction.
func NewDailyCheckService(
	log *logger.Logger,
	watchlistRepo repository.WatchlistRepository,
	kiwoomRepo repository.KiwoomRepository,
	notifier Notifier,
	redisClient *redisPkg.Client,
	targetRate float64,
	watchDays int,
) DailyCheckService {
	return &dailyCheckService{
		log:           log,
		watchlistRepo: watchlistRepo,
		kiwoomRepo:    kiwoomRepo,
		notifier:      notifier,
		redisClient:   redisClient,
		targetRate:    targetRate,
		watchDays:     watchDays,
	}
}

type dailyCheckService struct {
	log           *logger.Logger
	watchlistRepo repository.WatchlistRepository
	kiwoomRepo    repository.KiwoomRepository
	notifier      Notifier
	redisClient   *redisPkg.Client
	targetRate    float64
	watchDays     int
}

// RunDailyCheck evaluates the watching set for one run. Entries are processed
// sequentially and independently: a failure on one entry is recorded in the
// report and processing continues. All mutations and observations are
// committed atomically at the end; a commit failure is fatal to the run.
func (s *dailyCheckService) RunDailyCheck(ctx context.Context, today time.Time) (*dto.DailyCheckReport, error) {
	report := &dto.DailyCheckReport{RunDate: utils.DateOf(today)}

	entries, err := s.watchlistRepo.FindWatching(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load watching entries: %w", err)
	}
	if len(entries) == 0 {
		s.log.InfoContext(ctx, "No watching entries")
		return report, nil
	}

	s.log.InfoContext(ctx, "Starting daily check", logger.IntField("watching", len(entries)))

	batch := s.watchlistRepo.NewDailyCheckBatch()
	for i := range entries {
		result := s.checkEntry(ctx, &entries[i], today, batch)
		report.Results = append(report.Results, result)
		switch result.Transition {
		case string(entity.WatchStatusAlerted):
			report.AlertsSent++
		case string(entity.WatchStatusExpired):
			report.ExpiredCount++
		}
	}

	if err := batch.Commit(ctx); err != nil {
		return report, fmt.Errorf("failed to commit daily check: %w", err)
	}

	s.notifier.NotifyDailySummary(ctx, dto.DailySummaryNotification{
		WatchingCount: len(entries) - report.AlertsSent - report.ExpiredCount,
		AlertedToday:  report.AlertsSent,
		ExpiredToday:  report.ExpiredCount,
	})

	s.log.InfoContext(ctx, "Daily check finished",
		logger.IntField("alerts_sent", report.AlertsSent),
		logger.IntField("expired", report.ExpiredCount))

	return report, nil
}

// checkEntry evaluates a single entry and buffers its mutations on the batch.
// Notifications fire immediately on a transition, before the final commit.
func (s *dailyCheckService) checkEntry(ctx context.Context, entry *entity.Watchlist, today time.Time, batch repository.DailyCheckBatch) dto.DailyCheckResult {
	result := dto.DailyCheckResult{StockCode: entry.StockCode, Status: common.SKIPPED}

	dayIndex := utils.CountBusinessDays(entry.EnrolledDate, today)
	if dayIndex < 1 {
		// same-day enrollment or a weekend run
		return result
	}

	candle, err := s.kiwoomRepo.GetDailyCandle(ctx, entry.StockCode, today)
	if err != nil {
		s.log.Warn("Failed to fetch candle",
			logger.ErrorField(err),
			logger.StringField("stock_code", entry.StockCode),
			logger.StringField("stock_name", entry.StockName))
		result.Status = common.FAILED
		result.Errors = err.Error()
		return result
	}
	if candle.ClosePrice <= 0 {
		result.Status = common.FAILED
		result.Errors = "malformed candle: non-positive close price"
		return result
	}
	if entry.D0LowPrice <= 0 {
		// enrollment invariant violated; skip rather than divide by zero
		result.Status = common.FAILED
		result.Errors = "invalid baseline: non-positive d0 low price"
		return result
	}

	changeRate := float64(candle.ClosePrice-entry.D0LowPrice) / float64(entry.D0LowPrice) * 100

	s.cacheLastPrice(ctx, entry.StockCode, candle.ClosePrice)

	batch.AppendObservation(&entity.DailyPrice{
		StockCode:  entry.StockCode,
		TradeDate:  utils.DateOf(today),
		OpenPrice:  utils.ToPointer(candle.OpenPrice),
		HighPrice:  utils.ToPointer(candle.HighPrice),
		LowPrice:   utils.ToPointer(candle.LowPrice),
		ClosePrice: utils.ToPointer(candle.ClosePrice),
		Volume:     utils.ToPointer(candle.Volume),
		DayIndex:   utils.ToPointer(dayIndex),
		ChangeRate: utils.ToPointer(utils.RoundRate(changeRate)),
	})

	if changeRate > entry.PeakRate {
		entry.PeakRate = utils.RoundRate(changeRate)
	}

	// Alert always takes precedence over expiry, even on the day the
	// window closes.
	now := utils.TimeNowKST()
	switch {
	case changeRate >= s.targetRate:
		entry.Status = entity.WatchStatusAlerted
		entry.AlertDay = utils.ToPointer(dayIndex)
		entry.AlertedAt = utils.ToPointer(now)
		result.Transition = string(entity.WatchStatusAlerted)
		s.notifier.NotifyAlert(ctx, dto.AlertNotification{
			StockName:    entry.StockName,
			StockCode:    entry.StockCode,
			EnrolledDate: entry.EnrolledDate,
			D0LowPrice:   entry.D0LowPrice,
			ClosePrice:   candle.ClosePrice,
			ChangeRate:   changeRate,
			DayIndex:     dayIndex,
		})
	case dayIndex >= s.watchDays:
		entry.Status = entity.WatchStatusExpired
		result.Transition = string(entity.WatchStatusExpired)
		s.notifier.NotifyExpiration(ctx, dto.ExpirationNotification{
			StockName:    entry.StockName,
			StockCode:    entry.StockCode,
			EnrolledDate: entry.EnrolledDate,
			D0LowPrice:   entry.D0LowPrice,
			PeakRate:     entry.PeakRate,
			DayIndex:     dayIndex,
		})
	}
	batch.SaveEntry(entry)

	result.Status = common.SUCCESS
	return result
}

// cacheLastPrice records the latest close in Redis for operational lookups.
// Failures only log; the cache is not part of the run's correctness.
func (s *dailyCheckService) cacheLastPrice(ctx context.Context, stockCode string, closePrice int64) {
	if s.redisClient == nil {
		return
	}
	key := fmt.Sprintf(common.RedisKeyLastPrice, stockCode)
	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"price":     closePrice,
		"timestamp": utils.TimeNowKST().Unix(),
	})
	pipe.Expire(ctx, key, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("Failed to cache last price",
			logger.ErrorField(err), logger.StringField("stock_code", stockCode))
	}
}
