package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/pawfectcare/notifier/internal/service"
)

// Scheduler owns the two daily jobs: the retention sweep (02:00) and
// the appointment reminder run (09:00). Cron expressions come from
// config so deployments can shift them.
type Scheduler struct {
	cron       gocron.Scheduler
	dispatcher *service.Dispatcher
	logger     *zap.Logger
}

func New(dispatcher *service.Dispatcher, cleanupCron, reminderCron string, logger *zap.Logger) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{cron: cron, dispatcher: dispatcher, logger: logger}

	if _, err := cron.NewJob(
		gocron.CronJob(cleanupCron, false),
		gocron.NewTask(s.runCleanup),
	); err != nil {
		return nil, fmt.Errorf("schedule cleanup job: %w", err)
	}

	if _, err := cron.NewJob(
		gocron.CronJob(reminderCron, false),
		gocron.NewTask(s.runReminders),
	); err != nil {
		return nil, fmt.Errorf("schedule reminder job: %w", err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// Job failures end the run and are logged; the next scheduled tick
// starts fresh. There is no partial retry within a run.

func (s *Scheduler) runCleanup() {
	ctx := context.Background()
	if err := s.dispatcher.CleanupOldNotifications(ctx, time.Now().UTC()); err != nil {
		s.logger.Error("retention sweep failed", zap.Error(err))
	}
}

func (s *Scheduler) runReminders() {
	ctx := context.Background()
	if err := s.dispatcher.SendAppointmentReminders(ctx, time.Now().UTC()); err != nil {
		s.logger.Error("appointment reminder run failed", zap.Error(err))
	}
}
