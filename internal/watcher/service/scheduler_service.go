package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/watcher/config"
	"golang-stock-watchlist/internal/watcher/repository"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/utils"

	"github.com/robfig/cron/v3"
)

// SchedulerService triggers the daily check on the configured cron schedule
// and records each run in the audit trail.
type SchedulerService interface {
	Start() error
	Stop()
	RunOnce(ctx context.Context)
}

// NewSchedulerService creates a scheduler bound to the configured timezone.
func NewSchedulerService(
	log *logger.Logger,
	dailyCheckSvc DailyCheckService,
	runRepo repository.DailyCheckRunRepository,
	cfg *config.Config,
) (SchedulerService, error) {
	loc, err := time.LoadLocation(cfg.Watcher.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Watcher.Timezone, err)
	}
	runTimeout, err := time.ParseDuration(cfg.Watcher.RunTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid run_timeout: %w", err)
	}

	return &schedulerService{
		log:           log,
		dailyCheckSvc: dailyCheckSvc,
		runRepo:       runRepo,
		cron:          cron.New(cron.WithLocation(loc)),
		schedule:      cfg.Watcher.Schedule,
		runTimeout:    runTimeout,
	}, nil
}

type schedulerService struct {
	log           *logger.Logger
	dailyCheckSvc DailyCheckService
	runRepo       repository.DailyCheckRunRepository
	cron          *cron.Cron
	schedule      string
	runTimeout    time.Duration
}

func (s *schedulerService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.log.Info("Scheduler started", logger.StringField("schedule", s.schedule))
	return nil
}

// Stop halts the cron loop and waits for an in-flight run to finish.
func (s *schedulerService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

// RunOnce executes one evaluation run under the configured timeout and
// records its outcome. A failed run stays in the audit trail with its error;
// the next scheduled slot retries naturally.
func (s *schedulerService) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	today := utils.TimeNowKST()
	run := &entity.DailyCheckRun{
		RunDate:   utils.DateOf(today),
		Status:    entity.RunStatusRunning,
		StartedAt: today,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		s.log.Error("Failed to create run record", logger.ErrorField(err))
	}

	report, err := s.dailyCheckSvc.RunDailyCheck(ctx, today)

	run.AlertsSent = report.AlertsSent
	run.ExpiredCount = report.ExpiredCount
	if results, marshalErr := json.Marshal(report.Results); marshalErr == nil {
		run.Results = results
	}
	run.CompletedAt = sql.NullTime{Time: utils.TimeNowKST(), Valid: true}
	if err != nil {
		s.log.Error("Daily check run failed", logger.ErrorField(err))
		run.Status = entity.RunStatusFailed
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
	} else {
		run.Status = entity.RunStatusSuccess
	}

	if run.ID != 0 {
		if err := s.runRepo.Update(ctx, run); err != nil {
			s.log.Error("Failed to update run record", logger.ErrorField(err))
		}
	}
}
