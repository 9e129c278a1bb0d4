package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pawfectcare/notifier/internal/compose"
	"github.com/pawfectcare/notifier/internal/domain"
	"github.com/pawfectcare/notifier/internal/metrics"
	"github.com/pawfectcare/notifier/internal/provider"
	"github.com/pawfectcare/notifier/internal/queue"
	"github.com/pawfectcare/notifier/internal/ratelimiter"
	"github.com/pawfectcare/notifier/internal/repository"
)

// Dispatcher coordinates recipient resolution, message composition,
// push fan-out, and email queueing for every notification trigger.
// HTTP handlers, scheduled jobs, and workers depend on this service,
// not on each other.
type Dispatcher struct {
	users        repository.UserRepository
	pets         repository.PetRepository
	shelters     repository.ShelterRepository
	appointments repository.AppointmentRepository
	emails       repository.EmailNotificationRepository
	q            *queue.DeliveryQueue
	push         provider.PushSender
	limiter      *ratelimiter.ChannelLimiters
	metrics      *metrics.Metrics
	logger       *zap.Logger
	retention    time.Duration
}

func NewDispatcher(
	users repository.UserRepository,
	pets repository.PetRepository,
	shelters repository.ShelterRepository,
	appointments repository.AppointmentRepository,
	emails repository.EmailNotificationRepository,
	q *queue.DeliveryQueue,
	push provider.PushSender,
	limiter *ratelimiter.ChannelLimiters,
	m *metrics.Metrics,
	logger *zap.Logger,
	retentionDays int,
) *Dispatcher {
	return &Dispatcher{
		users:        users,
		pets:         pets,
		shelters:     shelters,
		appointments: appointments,
		emails:       emails,
		q:            q,
		push:         push,
		limiter:      limiter,
		metrics:      m,
		logger:       logger,
		retention:    time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// HandlePetCreated broadcasts a new-pet notification to every opted-in
// user. A failure for one user (push transport, record write) is
// logged and never aborts delivery to the remaining users.
func (d *Dispatcher) HandlePetCreated(ctx context.Context, pet *domain.Pet) error {
	if pet.ID == "" || pet.Name == "" {
		return domain.ErrInvalidEvent
	}

	subscribers, err := d.users.FindNewPetSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("resolve new-pet subscribers: %w", err)
	}

	pushContent := compose.NewPetPush(pet)
	data := compose.NewPetData(pet)

	for _, user := range subscribers {
		log := d.logger.With(zap.String("user_id", user.ID), zap.String("pet_id", pet.ID))

		if len(user.FCMTokens) > 0 {
			if _, err := d.fanOut(ctx, user, pushContent.Title, pushContent.Body, data); err != nil {
				log.Warn("push fan-out failed for user", zap.Error(err))
			}
		}

		if user.Settings.WantsEmail() && user.Email != "" {
			email := compose.NewPetEmail(pet, user)
			if err := d.queueEmail(ctx, user.Email, email, data); err != nil {
				log.Warn("failed to queue new-pet email", zap.Error(err))
			}
		}
	}

	d.logger.Info("new-pet broadcast dispatched",
		zap.String("pet_id", pet.ID),
		zap.String("pet_name", pet.Name),
		zap.Int("recipients", len(subscribers)))
	return nil
}

// HandleAdoptionRequested notifies the shelter that owns the requested
// pet. This is a single-recipient flow: a missing pet or shelter aborts
// the handler with no partial record.
func (d *Dispatcher) HandleAdoptionRequested(ctx context.Context, adoption *domain.Adoption) error {
	if adoption.ID == "" || adoption.PetID == "" {
		return domain.ErrInvalidEvent
	}

	pet, err := d.pets.GetByID(ctx, adoption.PetID)
	if err != nil {
		return fmt.Errorf("pet %s: %w", adoption.PetID, err)
	}

	shelter, err := d.shelters.GetByID(ctx, pet.ShelterID)
	if err != nil {
		return fmt.Errorf("shelter %s: %w", pet.ShelterID, err)
	}

	email := compose.AdoptionRequestEmail(adoption, pet, shelter)
	data := compose.AdoptionRequestData(adoption, pet)
	if err := d.queueEmail(ctx, shelter.Email, email, data); err != nil {
		return err
	}

	d.logger.Info("adoption request notification queued",
		zap.String("adoption_id", adoption.ID),
		zap.String("shelter", shelter.Name))
	return nil
}

// SendAppointmentReminders notifies every user with a confirmed
// appointment tomorrow. Per-appointment failures (missing user, push or
// queue errors) are logged and never abort the remaining reminders.
func (d *Dispatcher) SendAppointmentReminders(ctx context.Context, now time.Time) error {
	tomorrow := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	dayAfter := tomorrow.Add(24 * time.Hour)

	appointments, err := d.appointments.FindConfirmedBetween(ctx, tomorrow, dayAfter)
	if err != nil {
		return fmt.Errorf("find due appointments: %w", err)
	}

	for _, ap := range appointments {
		log := d.logger.With(zap.String("appointment_id", ap.ID), zap.String("user_id", ap.UserID))

		user, err := d.users.GetByID(ctx, ap.UserID)
		if err != nil {
			log.Warn("reminder skipped: user lookup failed", zap.Error(err))
			continue
		}
		if !user.Settings.WantsAppointments() {
			continue
		}

		pushContent := compose.AppointmentReminderPush(ap)
		if len(user.FCMTokens) > 0 {
			if _, err := d.fanOut(ctx, user, pushContent.Title, pushContent.Body, pushContent.Data); err != nil {
				log.Warn("reminder push failed", zap.Error(err))
			}
		}

		if user.Settings.WantsEmail() && user.Email != "" {
			email := compose.AppointmentReminderEmail(ap, user)
			if err := d.queueEmail(ctx, user.Email, email, pushContent.Data); err != nil {
				log.Warn("failed to queue reminder email", zap.Error(err))
			}
		}
	}

	d.logger.Info("appointment reminders dispatched", zap.Int("appointments", len(appointments)))
	return nil
}

// SendPush delivers a push notification to every device registered for
// one user. Fails with ErrNotFound for an unknown user and
// ErrNoDeviceTokens for a user with an empty token set. The per-message
// transport results are returned to the caller unmodified.
func (d *Dispatcher) SendPush(ctx context.Context, userID, title, body string, data map[string]string) ([]domain.PushResult, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUserID
	}
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.FCMTokens) == 0 {
		return nil, domain.ErrNoDeviceTokens
	}

	return d.fanOut(ctx, user, title, body, data)
}

// CleanupOldNotifications deletes every notification record older than
// the retention window as one atomic batch. Zero matches is a no-op.
func (d *Dispatcher) CleanupOldNotifications(ctx context.Context, now time.Time) error {
	cutoff := now.UTC().Add(-d.retention)

	deleted, err := d.emails.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("retention sweep: %w", err)
	}

	d.metrics.RecordsSwept.Add(float64(deleted))
	d.logger.Info("retention sweep completed",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", deleted))
	return nil
}

// GetEmailNotification and ListEmailNotifications back the operator API.
func (d *Dispatcher) GetEmailNotification(ctx context.Context, id string) (*domain.EmailNotification, error) {
	return d.emails.GetByID(ctx, id)
}

func (d *Dispatcher) ListEmailNotifications(ctx context.Context, filter domain.ListFilter) ([]*domain.EmailNotification, int, error) {
	return d.emails.List(ctx, filter)
}

// ---- private helpers ----

// fanOut builds one message per device token and submits them as a
// single batched transport call. Tokens are independent: the transport
// reports per-message results and a dead token never blocks the rest.
func (d *Dispatcher) fanOut(ctx context.Context, user *domain.User, title, body string, data map[string]string) ([]domain.PushResult, error) {
	if err := d.limiter.Wait(ctx, domain.ChannelPush); err != nil {
		return nil, err
	}

	messages := make([]domain.PushMessage, len(user.FCMTokens))
	for i, token := range user.FCMTokens {
		messages[i] = domain.PushMessage{
			Token: token,
			Title: title,
			Body:  body,
			Data:  data,
		}
	}

	results, err := d.push.SendBatch(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("push send: %w", err)
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	d.metrics.ObservePushResults(succeeded, len(results)-succeeded)

	return results, nil
}

// queueEmail persists an outbound email record with status=pending and
// hands its ID to the delivery queue. The write is durable before this
// returns; actual delivery happens asynchronously in the worker pool.
// A full queue is only a delay: the recovery worker re-enqueues the
// record later.
func (d *Dispatcher) queueEmail(ctx context.Context, to string, content compose.EmailContent, data map[string]string) error {
	n := &domain.EmailNotification{
		ID:        uuid.New().String(),
		Email:     to,
		Subject:   content.Subject,
		Body:      content.Body,
		Data:      data,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := d.emails.Create(ctx, n); err != nil {
		return fmt.Errorf("persist email record: %w", err)
	}

	if err := d.q.Enqueue(queue.Item{NotificationID: n.ID}); err != nil {
		d.logger.Warn("delivery queue full: record stays pending",
			zap.String("id", n.ID), zap.Error(err))
	}
	return nil
}
