package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pawfectcare/notifier/internal/domain"
	"github.com/pawfectcare/notifier/internal/provider"
	"github.com/pawfectcare/notifier/internal/queue"
	"github.com/pawfectcare/notifier/internal/ratelimiter"
	"github.com/pawfectcare/notifier/internal/repository"
)

// htmlShell is the fixed branding wrapper rendered around every email
// body at delivery time. %s receives the body with newlines converted
// to <br> tags.
const htmlShell = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #ff6b9d, #c44569); padding: 20px; text-align: center;">
    <h1 style="color: white; margin: 0;">🐾 PawfectCare</h1>
  </div>
  <div style="padding: 20px; background: #f8f9fa;">
    <div style="background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
      %s
    </div>
    <div style="text-align: center; margin-top: 20px; color: #666;">
      <p>Thank you for using PawfectCare!</p>
      <p>Visit our app for more pet care tips and services.</p>
    </div>
  </div>
</div>`

// RenderHTML wraps a plain-text body in the branded HTML shell.
func RenderHTML(body string) string {
	return fmt.Sprintf(htmlShell, strings.ReplaceAll(body, "\n", "<br>"))
}

// MailWorker is a single goroutine that continuously pulls record IDs
// from the delivery queue, applies email rate limiting, delivers via
// the mail transport, and records the terminal status. Delivery is a
// single attempt: a transport failure marks the record failed and is
// never re-tried or propagated.
type MailWorker struct {
	id      int
	q       *queue.DeliveryQueue
	repo    repository.EmailNotificationRepository
	mailer  provider.MailSender
	limiter *ratelimiter.ChannelLimiters
	logger  *zap.Logger

	// Hooks for metrics — injected by the pool so the worker stays metrics-agnostic.
	onSent   func(latency time.Duration)
	onFailed func()
}

// NewMailWorker constructs a worker. onSent and onFailed are optional (nil = no-op).
func NewMailWorker(
	id int,
	q *queue.DeliveryQueue,
	repo repository.EmailNotificationRepository,
	mailer provider.MailSender,
	limiter *ratelimiter.ChannelLimiters,
	logger *zap.Logger,
	onSent func(time.Duration),
	onFailed func(),
) *MailWorker {
	if onSent == nil {
		onSent = func(time.Duration) {}
	}
	if onFailed == nil {
		onFailed = func() {}
	}
	return &MailWorker{
		id: id, q: q, repo: repo, mailer: mailer,
		limiter: limiter, logger: logger,
		onSent: onSent, onFailed: onFailed,
	}
}

// Run blocks until ctx is cancelled, processing one queue item per iteration.
func (w *MailWorker) Run(ctx context.Context) {
	w.logger.Info("mail worker started", zap.Int("id", w.id))
	for {
		item, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("mail worker stopping", zap.Int("id", w.id))
			return
		}
		w.Process(ctx, item)
	}
}

// Process delivers a single queued record. Exported so the recovery
// path and tests can drive one delivery without a running goroutine.
func (w *MailWorker) Process(ctx context.Context, item queue.Item) {
	start := time.Now()
	log := w.logger.With(zap.String("notification_id", item.NotificationID))

	n, err := w.repo.GetByID(ctx, item.NotificationID)
	if err != nil {
		log.Error("failed to fetch email record", zap.Error(err))
		return
	}

	// Re-invocation on an already-terminal record is a no-op.
	if n.Status.IsTerminal() {
		log.Debug("record already terminal, skipping", zap.String("status", string(n.Status)))
		return
	}

	// Block here until the email rate limiter grants a token.
	if err := w.limiter.Wait(ctx, domain.ChannelEmail); err != nil {
		// ctx cancelled while waiting — worker is shutting down. The
		// record stays pending and the recovery worker re-enqueues it.
		return
	}

	html := RenderHTML(n.Body)
	if err := w.mailer.Send(ctx, n.Email, n.Subject, html); err != nil {
		log.Warn("mail transport send failed", zap.Error(err))
		if markErr := w.repo.MarkFailed(ctx, n.ID, err.Error()); markErr != nil {
			log.Error("failed to mark record as failed", zap.Error(markErr))
		}
		w.onFailed()
		return
	}

	elapsed := time.Since(start)
	if err := w.repo.MarkSent(ctx, n.ID, time.Now().UTC()); err != nil {
		log.Error("failed to mark record as sent", zap.Error(err))
		return
	}

	w.onSent(elapsed)
	log.Info("email sent", zap.String("to", n.Email), zap.Duration("latency", elapsed))
}
