package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/watcher/dto"
	"golang-stock-watchlist/internal/watcher/repository"
	"golang-stock-watchlist/pkg/common"
	"golang-stock-watchlist/pkg/logger"
	redisPkg "golang-stock-watchlist/pkg/redis"
	"golang-stock-watchlist/pkg/utils"
)

const summaryCacheTTL = time.Minute

// WatchlistService owns enrollment, listing, removal and the dashboard
// aggregates around the watchlist.
type WatchlistService interface {
	Enroll(ctx context.Context, nameOrCode string) (*entity.Watchlist, error)
	List(ctx context.Context, status entity.WatchStatus) ([]entity.Watchlist, error)
	Detail(ctx context.Context, stockCode string) (*dto.WatchlistDetailResponse, error)
	Remove(ctx context.Context, stockCode string) (*entity.Watchlist, error)
	History(ctx context.Context, status entity.WatchStatus) ([]entity.Watchlist, error)
	DeleteHistory(ctx context.Context, id uint) (*entity.Watchlist, error)
	DashboardSummary(ctx context.Context) (*dto.DashboardSummary, error)
}

// NewWatchlistService creates a new WatchlistService.
func NewWatchlistService(
	log *logger.Logger,
	watchlistRepo repository.WatchlistRepository,
	dailyPriceRepo repository.DailyPriceRepository,
	kiwoomRepo repository.KiwoomRepository,
	directory repository.StockDirectory,
	notifier Notifier,
	redisClient *redisPkg.Client,
	targetRate float64,
	watchDays int,
) WatchlistService {
	return &watchlistService{
		log:            log,
		watchlistRepo:  watchlistRepo,
		dailyPriceRepo: dailyPriceRepo,
		kiwoomRepo:     kiwoomRepo,
		directory:      directory,
		notifier:       notifier,
		redisClient:    redisClient,
		targetRate:     targetRate,
		watchDays:      watchDays,
	}
}

type watchlistService struct {
	log            *logger.Logger
	watchlistRepo  repository.WatchlistRepository
	dailyPriceRepo repository.DailyPriceRepository
	kiwoomRepo     repository.KiwoomRepository
	directory      repository.StockDirectory
	notifier       Notifier
	redisClient    *redisPkg.Client
	targetRate     float64
	watchDays      int
}

// Enroll resolves a display name or exchange code, fetches the day-0 low as
// the baseline and creates a watching entry.
func (s *watchlistService) Enroll(ctx context.Context, nameOrCode string) (*entity.Watchlist, error) {
	info, err := s.resolveStock(ctx, nameOrCode)
	if err != nil {
		return nil, err
	}

	existing, err := s.watchlistRepo.FindWatchingByCode(ctx, info.StockCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyWatching
	}

	lowPrice, err := s.kiwoomRepo.GetCurrentLowPrice(ctx, info.StockCode)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch day-0 low price",
			logger.ErrorField(err), logger.StringField("stock_code", info.StockCode))
		return nil, ErrQuoteUnavailable
	}
	if lowPrice <= 0 {
		return nil, ErrInvalidBaselinePrice
	}

	entry := &entity.Watchlist{
		StockCode:    info.StockCode,
		StockName:    info.StockName,
		EnrolledDate: utils.DateOf(utils.TimeNowKST()),
		D0LowPrice:   lowPrice,
		Status:       entity.WatchStatusWatching,
	}
	if err := s.watchlistRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.notifier.NotifyEnrollment(ctx, dto.EnrollmentNotification{
		StockName:    entry.StockName,
		StockCode:    entry.StockCode,
		EnrolledDate: entry.EnrolledDate,
		D0LowPrice:   entry.D0LowPrice,
		TargetPrice:  int64(float64(entry.D0LowPrice) * (1 + s.targetRate/100)),
		TargetRate:   s.targetRate,
		WatchDays:    s.watchDays,
	})

	return entry, nil
}

// resolveStock tries the local listing directory first (by name, then code)
// and falls back to the provider's stock-info API for codes the directory
// does not know.
func (s *watchlistService) resolveStock(ctx context.Context, nameOrCode string) (*dto.StockInfo, error) {
	if info, ok := s.directory.FindByName(nameOrCode); ok {
		return info, nil
	}
	if info, ok := s.directory.FindByCode(nameOrCode); ok {
		return info, nil
	}

	quote, err := s.kiwoomRepo.GetStockInfo(ctx, nameOrCode)
	if err != nil {
		if errors.Is(err, repository.ErrStockNotFound) {
			return nil, ErrStockNotFound
		}
		return nil, err
	}
	return &dto.StockInfo{StockCode: quote.StockCode, StockName: quote.StockName}, nil
}

func (s *watchlistService) List(ctx context.Context, status entity.WatchStatus) ([]entity.Watchlist, error) {
	return s.watchlistRepo.FindAll(ctx, status)
}

func (s *watchlistService) Detail(ctx context.Context, stockCode string) (*dto.WatchlistDetailResponse, error) {
	entry, err := s.watchlistRepo.FindLatestByCode(ctx, stockCode)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrWatchlistNotFound
	}

	prices, err := s.dailyPriceRepo.FindByStockCode(ctx, stockCode)
	if err != nil {
		return nil, err
	}

	return &dto.WatchlistDetailResponse{Watchlist: *entry, DailyPrices: prices}, nil
}

// Remove ends observation manually: the entry moves to expired and a removal
// notification goes out.
func (s *watchlistService) Remove(ctx context.Context, stockCode string) (*entity.Watchlist, error) {
	entry, err := s.watchlistRepo.FindWatchingByCode(ctx, stockCode)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrWatchlistNotFound
	}

	entry.Status = entity.WatchStatusExpired
	if err := s.watchlistRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.notifier.NotifyRemoval(ctx, dto.RemovalNotification{
		StockName: entry.StockName,
		StockCode: entry.StockCode,
	})

	return entry, nil
}

func (s *watchlistService) History(ctx context.Context, status entity.WatchStatus) ([]entity.Watchlist, error) {
	return s.watchlistRepo.FindFinished(ctx, status)
}

func (s *watchlistService) DeleteHistory(ctx context.Context, id uint) (*entity.Watchlist, error) {
	entry, err := s.watchlistRepo.FindFinishedByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrWatchlistNotFound
	}

	if err := s.watchlistRepo.DeleteWithDailyPrices(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DashboardSummary aggregates lifecycle counts, cached briefly in Redis to
// keep the dashboard cheap to refresh.
func (s *watchlistService) DashboardSummary(ctx context.Context) (*dto.DashboardSummary, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, common.RedisKeyDashboardSummary).Result(); err == nil {
			var summary dto.DashboardSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	summary, err := s.watchlistRepo.Summary(ctx)
	if err != nil {
		return nil, err
	}

	if summary.AvgPeakRate != nil {
		summary.AvgPeakRate = utils.ToPointer(utils.RoundRate(*summary.AvgPeakRate))
	}
	if finished := summary.AlertedCount + summary.ExpiredCount; finished > 0 {
		rate := math.Round(float64(summary.AlertedCount)/float64(finished)*1000) / 10
		summary.AlertSuccessRate = &rate
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.redisClient.Set(ctx, common.RedisKeyDashboardSummary, payload, summaryCacheTTL).Err(); err != nil {
				s.log.Error("Failed to cache dashboard summary", logger.ErrorField(err))
			}
		}
	}

	return summary, nil
}
