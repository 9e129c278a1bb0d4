package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pawfectcare/notifier/internal/queue"
	"github.com/pawfectcare/notifier/internal/repository"
)

// RecoveryWorker polls the database for pending email records that
// never made it through a worker — because the queue was full at
// enqueue time or the process restarted with items in flight — and
// re-enqueues them.
//
// Only records older than staleAfter are picked up, so a record that
// is simply waiting its turn in the queue is never enqueued twice.
// The DB-backed approach means a durable pending row always gets a
// delivery attempt eventually, without any retry of attempted sends.
type RecoveryWorker struct {
	repo       repository.EmailNotificationRepository
	q          *queue.DeliveryQueue
	interval   time.Duration
	staleAfter time.Duration
	logger     *zap.Logger
}

func NewRecoveryWorker(
	repo repository.EmailNotificationRepository,
	q *queue.DeliveryQueue,
	interval, staleAfter time.Duration,
	logger *zap.Logger,
) *RecoveryWorker {
	return &RecoveryWorker{
		repo: repo, q: q,
		interval: interval, staleAfter: staleAfter,
		logger: logger,
	}
}

// Run ticks every interval and re-enqueues any stale pending records.
// Stops cleanly when ctx is cancelled.
func (rw *RecoveryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("recovery worker started",
		zap.Duration("interval", rw.interval),
		zap.Duration("stale_after", rw.staleAfter))

	for {
		select {
		case <-ctx.Done():
			rw.logger.Info("recovery worker stopping")
			return
		case <-ticker.C:
			rw.poll(ctx)
		}
	}
}

func (rw *RecoveryWorker) poll(ctx context.Context) {
	before := time.Now().UTC().Add(-rw.staleAfter)
	records, err := rw.repo.FindStalePending(ctx, before)
	if err != nil {
		rw.logger.Error("recovery poll error", zap.Error(err))
		return
	}

	recovered := 0
	for _, n := range records {
		if err := rw.q.Enqueue(queue.Item{NotificationID: n.ID}); err != nil {
			rw.logger.Warn("could not re-enqueue pending record",
				zap.String("id", n.ID), zap.Error(err))
			continue
		}
		recovered++
	}

	if recovered > 0 {
		rw.logger.Info("re-enqueued stale pending records", zap.Int("count", recovered))
	}
}
