package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pawfectcare/notifier/internal/provider"
	"github.com/pawfectcare/notifier/internal/queue"
	"github.com/pawfectcare/notifier/internal/ratelimiter"
	"github.com/pawfectcare/notifier/internal/repository"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the pool constructor signature clean.
type MetricHooks struct {
	OnSent   func(latency time.Duration)
	OnFailed func()
}

// Pool manages the lifecycle of all mail workers sharing one queue.
type Pool struct {
	workers []*MailWorker
	wg      sync.WaitGroup
}

func NewPool(
	count int,
	q *queue.DeliveryQueue,
	repo repository.EmailNotificationRepository,
	mailer provider.MailSender,
	limiter *ratelimiter.ChannelLimiters,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	workers := make([]*MailWorker, count)
	for i := range workers {
		workers[i] = NewMailWorker(
			i, q, repo, mailer, limiter,
			logger.With(zap.Int("worker_id", i)),
			hooks.OnSent,
			hooks.OnFailed,
		)
	}
	return &Pool{workers: workers}
}

// Start launches all workers as goroutines. Cancelling ctx triggers a
// graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *MailWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Call this after cancelling the context so in-flight sends finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}
