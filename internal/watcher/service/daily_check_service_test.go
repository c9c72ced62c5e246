package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/watcher/dto"
	"golang-stock-watchlist/internal/watcher/repository"
	"golang-stock-watchlist/pkg/common"
	"golang-stock-watchlist/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

type mockWatchlistRepository struct {
	findWatchingFn       func(ctx context.Context) ([]entity.Watchlist, error)
	findWatchingByCodeFn func(ctx context.Context, stockCode string) (*entity.Watchlist, error)
	findLatestByCodeFn   func(ctx context.Context, stockCode string) (*entity.Watchlist, error)
	findFinishedByIDFn   func(ctx context.Context, id uint) (*entity.Watchlist, error)
	summaryFn            func(ctx context.Context) (*dto.DashboardSummary, error)
	created              []*entity.Watchlist
	updated              []*entity.Watchlist
	deleted              []*entity.Watchlist
	createErr            error
	batch                *mockDailyCheckBatch
}

func (m *mockWatchlistRepository) Create(ctx context.Context, entry *entity.Watchlist) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, entry)
	return nil
}
func (m *mockWatchlistRepository) Update(ctx context.Context, entry *entity.Watchlist) error {
	m.updated = append(m.updated, entry)
	return nil
}
func (m *mockWatchlistRepository) FindWatching(ctx context.Context) ([]entity.Watchlist, error) {
	return m.findWatchingFn(ctx)
}
func (m *mockWatchlistRepository) FindWatchingByCode(ctx context.Context, stockCode string) (*entity.Watchlist, error) {
	if m.findWatchingByCodeFn != nil {
		return m.findWatchingByCodeFn(ctx, stockCode)
	}
	return nil, nil
}
func (m *mockWatchlistRepository) FindAll(ctx context.Context, status entity.WatchStatus) ([]entity.Watchlist, error) {
	return nil, nil
}
func (m *mockWatchlistRepository) FindLatestByCode(ctx context.Context, stockCode string) (*entity.Watchlist, error) {
	if m.findLatestByCodeFn != nil {
		return m.findLatestByCodeFn(ctx, stockCode)
	}
	return nil, nil
}
func (m *mockWatchlistRepository) FindFinished(ctx context.Context, status entity.WatchStatus) ([]entity.Watchlist, error) {
	return nil, nil
}
func (m *mockWatchlistRepository) FindFinishedByID(ctx context.Context, id uint) (*entity.Watchlist, error) {
	if m.findFinishedByIDFn != nil {
		return m.findFinishedByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockWatchlistRepository) DeleteWithDailyPrices(ctx context.Context, entry *entity.Watchlist) error {
	m.deleted = append(m.deleted, entry)
	return nil
}
func (m *mockWatchlistRepository) Summary(ctx context.Context) (*dto.DashboardSummary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(ctx)
	}
	return &dto.DashboardSummary{}, nil
}
func (m *mockWatchlistRepository) NewDailyCheckBatch() repository.DailyCheckBatch {
	if m.batch == nil {
		m.batch = &mockDailyCheckBatch{}
	}
	return m.batch
}

type mockDailyCheckBatch struct {
	entries      []*entity.Watchlist
	observations []*entity.DailyPrice
	commitErr    error
	committed    bool
}

func (b *mockDailyCheckBatch) SaveEntry(entry *entity.Watchlist) {
	b.entries = append(b.entries, entry)
}

func (b *mockDailyCheckBatch) AppendObservation(obs *entity.DailyPrice) {
	b.observations = append(b.observations, obs)
}
func (b *mockDailyCheckBatch) Commit(ctx context.Context) error {
	b.committed = true
	return b.commitErr
}

type mockKiwoomRepository struct {
	getDailyCandleFn     func(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error)
	getStockInfoFn       func(ctx context.Context, stockCode string) (*dto.StockQuote, error)
	getCurrentLowPriceFn func(ctx context.Context, stockCode string) (int64, error)
}

func (m *mockKiwoomRepository) GetDailyCandle(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
	return m.getDailyCandleFn(ctx, stockCode, tradeDate)
}
func (m *mockKiwoomRepository) GetStockInfo(ctx context.Context, stockCode string) (*dto.StockQuote, error) {
	return m.getStockInfoFn(ctx, stockCode)
}
func (m *mockKiwoomRepository) GetCurrentLowPrice(ctx context.Context, stockCode string) (int64, error) {
	return m.getCurrentLowPriceFn(ctx, stockCode)
}

type mockNotifier struct {
	alerts      []dto.AlertNotification
	expirations []dto.ExpirationNotification
	enrollments []dto.EnrollmentNotification
	removals    []dto.RemovalNotification
	summaries   []dto.DailySummaryNotification
}

func (m *mockNotifier) NotifyAlert(ctx context.Context, p dto.AlertNotification) {
	m.alerts = append(m.alerts, p)
}
func (m *mockNotifier) NotifyExpiration(ctx context.Context, p dto.ExpirationNotification) {
	m.expirations = append(m.expirations, p)
}
func (m *mockNotifier) NotifyEnrollment(ctx context.Context, p dto.EnrollmentNotification) {
	m.enrollments = append(m.enrollments, p)
}
func (m *mockNotifier) NotifyRemoval(ctx context.Context, p dto.RemovalNotification) {
	m.removals = append(m.removals, p)
}
func (m *mockNotifier) NotifyDailySummary(ctx context.Context, p dto.DailySummaryNotification) {
	m.summaries = append(m.summaries, p)
}

var (
	// 2025-08-04 is a Monday.
	monday  = time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
)

func candleWithClose(closePrice int64) *dto.DailyCandle {
	return &dto.DailyCandle{
		TradeDate:  tuesday,
		OpenPrice:  closePrice - 50,
		HighPrice:  closePrice + 10,
		LowPrice:   closePrice - 100,
		ClosePrice: closePrice,
		Volume:     123456,
	}
}

func watchingEntry(id uint, code string, d0Low int64, enrolled time.Time) entity.Watchlist {
	return entity.Watchlist{
		ID:           id,
		StockCode:    code,
		StockName:    "테스트종목",
		EnrolledDate: enrolled,
		D0LowPrice:   d0Low,
		Status:       entity.WatchStatusWatching,
	}
}

func TestRunDailyCheck_AlertAtExactThreshold(t *testing.T) {
	repo := &mockWatchlistRepository{
		findWatchingFn: func(ctx context.Context) ([]entity.Watchlist, error) {
			return []entity.Watchlist{watchingEntry(1, "005930", 1000, monday)}, nil
		},
	}
	kiwoom := &mockKiwoomRepository{
		getDailyCandleFn: func(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
			return candleWithClose(1500), nil
		},
	}
	notifier := &mockNotifier{}

	svc := NewDailyCheckService(newTestLogger(t), repo, kiwoom, notifier, nil, 50.0, 5)
	report, err := svc.RunDailyCheck(context.Background(), tuesday)

	require.NoError(t, err)
	assert.Equal(t, 1, report.AlertsSent)
	assert.Equal(t, 0, report.ExpiredCount)
	require.Len(t, report.Results, 1)
	assert.Equal(t, common.SUCCESS, report.Results[0].Status)
	assert.Equal(t, string(entity.WatchStatusAlerted), report.Results[0].Transition)

	require.Len(t, repo.batch.entries, 1)
	entry := repo.batch.entries[0]
	assert.Equal(t, entity.WatchStatusAlerted, entry.Status)
	require.NotNil(t, entry.AlertDay)
	assert.Equal(t, 1, *entry.AlertDay)
	require.NotNil(t, entry.AlertedAt)
	assert.InDelta(t, 50.0, entry.PeakRate, 0.001)

	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, "005930", notifier.alerts[0].StockCode)
	assert.InDelta(t, 50.0, notifier.alerts[0].ChangeRate, 0.001)
	assert.Equal(t, 1, notifier.alerts[0].DayIndex)
	assert.True(t, repo.batch.committed)
	require.Len(t, notifier.summaries, 1)
	assert.Equal(t, 1, notifier.summaries[0].AlertedToday)
}

func TestRunDailyCheck_BelowThresholdStaysWatching(t *testing.T) {
	repo := &mockWatchlistRepository{
		findWatchingFn: func(ctx context.Context) ([]entity.Watchlist, error) {
			return []entity.Watchlist{watchingEntry(1, "005930", 1000, monday)}, nil
		},
	}
	kiwoom := &mockKiwoomRepository{
		getDailyCandleFn: func(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
			return candleWithClose(1499), nil
		},
	}
	notifier := &mockNotifier{}

	svc := NewDailyCheckService(newTestLogger(t), repo, kiwoom, notifier, nil, 50.0, 5)
	report, err := svc.RunDailyCheck(context.Background(), tuesday)

	require.NoError(t, err)
	assert.Equal(t, 0, report.AlertsSent)
	assert.Equal(t, 0, report.ExpiredCount)
	assert.Empty(t, notifier.alerts)
	assert.Empty(t, notifier.expirations)

	require.Len(t, repo.batch.entries, 1)
	assert.Equal(t, entity.WatchStatusWatching, repo.batch.entries[0].Status)
	assert.InDelta(t, 49.9, repo.batch.entries[0].PeakRate, 0.001)

	require.Len(t, repo.batch.observations, 1)
	obs := repo.batch.observations[0]
	require.NotNil(t, obs.ChangeRate)
	assert.InDelta(t, 49.9, *obs.ChangeRate, 0.001)
	require.NotNil(t, obs.DayIndex)
	assert.Equal(t, 1, *obs.DayIndex)
}

func TestRunDailyCheck_RoundedRateDoesNotAlert(t *testing.T) {
	// 149996/100000 rounds to 50.00 for display but the raw rate is 49.996,
	// which must not trip a 50% threshold.
	repo := &mockWatchlistRepository{
		findWatchingFn: func(ctx context.Context) ([]entity.Watchlist, error) {
			return []entity.Watchlist{watchingEntry(1, "005930", 100000, monday)}, nil
		},
	}
	kiwoom := &mockKiwoomRepository{
		getDailyCandleFn: func(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
			return candleWithClose(149996), nil
		},
	}
	notifier := &mockNotifier{}

	svc := NewDailyCheckService(newTestLogger(t), repo, kiwoom, notifier, nil, 50.0, 5)
	_, err := svc.RunDailyCheck(context.Background(), tuesday)

	require.NoError(t, err)
	assert.Empty(t, notifier.alerts)
	require.Len(t, repo.batch.observations, 1)
	require.NotNil(t, repo.batch.observations[0].ChangeRate)
	assert.InDelta(t, 50.0, *repo.batch.observations[0].ChangeRate, 0.0001)
}

func TestRunDailyCheck_ExpiresAtWindowEnd(t *testing.T) {
	repo := &mockWatchlistRepository{
		findWatchingFn: func(ctx context.Context) ([]entity.Watchlist, error) {
			entry := watchingEntry(1, "005930", 1000, monday)
			entry.PeakRate = 32.5
			return []entity.Watchlist{entry}, nil
		},
	}
	kiwoom := &mockKiwoomRepository{
		getDailyCandleFn: func(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
			return candleWithClose(1100), nil
		},
	}
	notifier := &mockNotifier{}

	// fifth business day after a Monday enrollment is the next Monday
	nextMonday := monday.AddDate(0, 0, 7)
	svc := NewDailyCheckService(newTestLogger(t), repo, kiwoom, notifier, nil, 50.0, 5)
	report, err := svc.RunDailyCheck(context.Background(), nextMonday)

	require.NoError(t, err)
	assert.Equal(t, 0, report.AlertsSent)
	assert.Equal(t, 1, report.ExpiredCount)

	require.Len(t, repo.batch.entries, 1)
	assert.Equal(t, entity.WatchStatusExpired, repo.batch.entries[0].Status)

	require.Len(t, notifier.expirations, 1)
	assert.Equal(t, 5, notifier.expirations[0].DayIndex)
	assert.InDelta(t, 32.5, notifier.expirations[0].PeakRate, 0.001)
}

func TestRunDailyCheck_AlertWinsOverExpiryOnLastDay(t *testing.T) {
	repo := &mockWatchlistRepository{
		findWatchingFn: func(ctx context.Context) ([]entity.Watchlist, error) {
			return []entity.Watchlist{watchingEntry(1, "005930", 1000, monday)}, nil
		},
	}
	kiwoom := &mockKiwoomRepository{
		getDailyCandleFn: func(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
			return candleWithClose(1600), nil
		},
	}
	notifier := &mockNotifier{}

	nextMonday := monday.AddDate(0, 0, 7)
	svc := NewDailyCheckService(newTestLogger(t), repo, kiwoom, notifier, nil, 50.0, 5)
	report, err := svc.RunDailyCheck(context.Background(), nextMonday)

	require.NoError(t, err)
	assert.Equal(t, 1, report.AlertsSent)
	assert.Equal(t, 0, report.ExpiredCount)
	assert.Len(t, notifier.alerts, 1)
	assert.Empty(t, notifier.expirations)
	assert.Equal(t, entity.WatchStatusAlerted, repo.batch.entries[0].Status)
}

func TestRunDailyCheck_PeakRateNeverDecreases(t *testing.T) {
	repo := &mockWatchlistRepository{
		findWatchingFn: func(ctx context.Context) ([]entity.Watchlist, error) {
			entry := watchingEntry(1, "005930", 1000, monday)
			entry.PeakRate = 45.0
			return []entity.Watchlist{entry}, nil
		},
	}
	kiwoom := &mockKiwoomRepository{
		getDailyCandleFn: func(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
			return candleWithClose(1200), nil
		},
	}
	notifier := &mockNotifier{}

	svc := NewDailyCheckService(newTestLogger(t), repo, kiwoom, notifier, nil, 50.0, 5)
	_, err := svc.RunDailyCheck(context.Background(), tuesday)

	require.NoError(t, err)
	require.Len(t, repo.batch.entries, 1)
	assert.InDelta(t, 45.0, repo.batch.entries[0].PeakRate, 0.001)
}

func TestRunDailyCheck_SkipsSameDayEnrollment(t *testing.T) {
	repo := &mockWatchlistRepository{
		findWatchingFn: func(ctx context.Context) ([]entity.Watchlist, error) {
			return []entity.Watchlist{watchingEntry(1, "005930", 1000, tuesday)}, nil
		},
	}
	kiwoom := &mockKiwoomRepository{
		getDailyCandleFn: func(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
			t.Fatal("quote source must not be called for a day-0 entry")
			return nil, nil
		},
	}
	notifier := &mockNotifier{}

	svc := NewDailyCheckService(newTestLogger(t), repo, kiwoom, notifier, nil, 50.0, 5)
	report, err := svc.RunDailyCheck(context.Background(), tuesday)

	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, common.SKIPPED, report.Results[0].Status)
	assert.Empty(t, repo.batch.entries)
	assert.Empty(t, repo.batch.observations)
}

func TestRunDailyCheck_FetchFailureDoesNotAbortRun(t *testing.T) {
	repo := &mockWatchlistRepository{
		findWatchingFn: func(ctx context.Context) ([]entity.Watchlist, error) {
			return []entity.Watchlist{
				watchingEntry(1, "005930", 1000, monday),
				watchingEntry(2, "000660", 1000, monday),
			}, nil
		},
	}
	kiwoom := &mockKiwoomRepository{
		getDailyCandleFn: func(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
			if stockCode == "005930" {
				return nil, errors.New("provider timeout")
			}
			return candleWithClose(1600), nil
		},
	}
	notifier := &mockNotifier{}

	svc := NewDailyCheckService(newTestLogger(t), repo, kiwoom, notifier, nil, 50.0, 5)
	report, err := svc.RunDailyCheck(context.Background(), tuesday)

	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, common.FAILED, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Errors, "provider timeout")
	assert.Equal(t, common.SUCCESS, report.Results[1].Status)
	assert.Equal(t, 1, report.AlertsSent)

	// the failed entry keeps its watching status for the next run
	require.Len(t, repo.batch.entries, 1)
	assert.Equal(t, "000660", repo.batch.entries[0].StockCode)
	assert.True(t, repo.batch.committed)
}

func TestRunDailyCheck_InvalidBaselineFails(t *testing.T) {
	repo := &mockWatchlistRepository{
		findWatchingFn: func(ctx context.Context) ([]entity.Watchlist, error) {
			return []entity.Watchlist{watchingEntry(1, "005930", 0, monday)}, nil
		},
	}
	kiwoom := &mockKiwoomRepository{
		getDailyCandleFn: func(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
			return candleWithClose(1500), nil
		},
	}
	notifier := &mockNotifier{}

	svc := NewDailyCheckService(newTestLogger(t), repo, kiwoom, notifier, nil, 50.0, 5)
	report, err := svc.RunDailyCheck(context.Background(), tuesday)

	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, common.FAILED, report.Results[0].Status)
	assert.Empty(t, notifier.alerts)
	assert.Empty(t, repo.batch.entries)
}

func TestRunDailyCheck_CommitFailureIsFatal(t *testing.T) {
	repo := &mockWatchlistRepository{
		findWatchingFn: func(ctx context.Context) ([]entity.Watchlist, error) {
			return []entity.Watchlist{watchingEntry(1, "005930", 1000, monday)}, nil
		},
		batch: &mockDailyCheckBatch{commitErr: errors.New("deadlock detected")},
	}
	kiwoom := &mockKiwoomRepository{
		getDailyCandleFn: func(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
			return candleWithClose(1200), nil
		},
	}
	notifier := &mockNotifier{}

	svc := NewDailyCheckService(newTestLogger(t), repo, kiwoom, notifier, nil, 50.0, 5)
	_, err := svc.RunDailyCheck(context.Background(), tuesday)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit daily check")
	assert.Empty(t, notifier.summaries)
}

func TestRunDailyCheck_EmptyWatchlist(t *testing.T) {
	repo := &mockWatchlistRepository{
		findWatchingFn: func(ctx context.Context) ([]entity.Watchlist, error) {
			return nil, nil
		},
	}
	notifier := &mockNotifier{}

	svc := NewDailyCheckService(newTestLogger(t), repo, &mockKiwoomRepository{}, notifier, nil, 50.0, 5)
	report, err := svc.RunDailyCheck(context.Background(), tuesday)

	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Empty(t, notifier.summaries)
}
