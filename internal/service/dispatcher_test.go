package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pawfectcare/notifier/internal/domain"
	"github.com/pawfectcare/notifier/internal/metrics"
	"github.com/pawfectcare/notifier/internal/queue"
	"github.com/pawfectcare/notifier/internal/ratelimiter"
	"github.com/pawfectcare/notifier/internal/repository"
	"github.com/pawfectcare/notifier/internal/service"
)

// fakePushSender records batches and can fail for selected tokens or
// for a whole batch when one of the tokens matches failBatchToken.
type fakePushSender struct {
	batches        [][]domain.PushMessage
	failTokens     map[string]bool
	failBatchToken string
}

func (f *fakePushSender) SendBatch(_ context.Context, messages []domain.PushMessage) ([]domain.PushResult, error) {
	for _, m := range messages {
		if m.Token == f.failBatchToken && f.failBatchToken != "" {
			return nil, errors.New("push transport unavailable")
		}
	}
	f.batches = append(f.batches, messages)
	results := make([]domain.PushResult, len(messages))
	for i, m := range messages {
		results[i] = domain.PushResult{Token: m.Token, Success: !f.failTokens[m.Token], MessageID: "msg-" + m.Token}
		if f.failTokens[m.Token] {
			results[i].Success = false
			results[i].MessageID = ""
			results[i].Error = "registration-token-not-registered"
		}
	}
	return results, nil
}

type fixture struct {
	dispatcher *service.Dispatcher
	users      *repository.MockUserRepository
	emails     *repository.MockEmailNotificationRepository
	apps       *repository.MockAppointmentRepository
	push       *fakePushSender
	q          *queue.DeliveryQueue
}

func newFixture(pets []*domain.Pet, shelters []*domain.Shelter) *fixture {
	users := repository.NewMockUserRepository()
	emails := repository.NewMockEmailNotificationRepository()
	apps := &repository.MockAppointmentRepository{}
	push := &fakePushSender{failTokens: map[string]bool{}}
	q := queue.New(100)

	d := service.NewDispatcher(
		users,
		repository.NewMockPetRepository(pets...),
		repository.NewMockShelterRepository(shelters...),
		apps,
		emails,
		q,
		push,
		ratelimiter.New(1000),
		metrics.New(prometheus.NewRegistry()),
		zap.NewNop(),
		30,
	)
	return &fixture{dispatcher: d, users: users, emails: emails, apps: apps, push: push, q: q}
}

var rex = &domain.Pet{
	ID: "pet-1", Name: "Rex", Species: "Dog", Breed: "Labrador",
	Age: 3, HealthStatus: "Healthy", AdoptionFee: 150, ShelterID: "shelter-1",
}

func optedInUser(id string, tokens ...string) *domain.User {
	return &domain.User{
		ID:        id,
		Email:     id + "@example.com",
		Name:      "User " + id,
		FCMTokens: tokens,
		Settings: &domain.NotificationSettings{
			NewPets:            true,
			Appointments:       true,
			EmailNotifications: true,
		},
	}
}

func TestHandlePetCreated_EndToEnd(t *testing.T) {
	f := newFixture(nil, nil)
	f.users.Add(optedInUser("u1", "tok-a", "tok-b"))

	if err := f.dispatcher.HandlePetCreated(context.Background(), rex); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Push transport invoked once with 2 messages (one per token).
	if len(f.push.batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(f.push.batches))
	}
	if got := len(f.push.batches[0]); got != 2 {
		t.Fatalf("expected 2 messages in batch, got %d", got)
	}
	if f.push.batches[0][0].Data["type"] != "new_pet" {
		t.Errorf("push data type = %q", f.push.batches[0][0].Data["type"])
	}

	// One pending email record with the fixed subject.
	records, total, _ := f.emails.List(context.Background(), domain.ListFilter{})
	if total != 1 {
		t.Fatalf("expected 1 email record, got %d", total)
	}
	if records[0].Status != domain.StatusPending {
		t.Errorf("expected status=pending, got %s", records[0].Status)
	}
	if records[0].Subject != "New Pet Available - Rex" {
		t.Errorf("unexpected subject: %q", records[0].Subject)
	}
	if f.q.Depth() != 1 {
		t.Errorf("expected record enqueued for delivery, depth=%d", f.q.Depth())
	}
}

// A transport failure for one user must not abort the broadcast to the
// remaining users.
func TestHandlePetCreated_PerUserFailureContinues(t *testing.T) {
	f := newFixture(nil, nil)
	f.users.Add(optedInUser("u1", "tok-1"))
	f.users.Add(optedInUser("u2", "tok-dead"))
	f.users.Add(optedInUser("u3", "tok-3"))
	f.push.failBatchToken = "tok-dead"

	if err := f.dispatcher.HandlePetCreated(context.Background(), rex); err != nil {
		t.Fatalf("broadcast must not fail: %v", err)
	}

	if len(f.push.batches) != 2 {
		t.Fatalf("expected batches for the 2 healthy users, got %d", len(f.push.batches))
	}
	// Emails are still queued for every user, failing push included.
	if _, total, _ := f.emails.List(context.Background(), domain.ListFilter{}); total != 3 {
		t.Fatalf("expected 3 email records, got %d", total)
	}
}

// Users without a settings object are excluded from preference-gated
// broadcasts (default-deny), and opted-in users without email opt-in
// get push only.
func TestHandlePetCreated_PreferenceGating(t *testing.T) {
	f := newFixture(nil, nil)

	noSettings := &domain.User{ID: "u-none", Email: "none@example.com", FCMTokens: []string{"t1"}}
	f.users.Add(noSettings)

	pushOnly := optedInUser("u-push", "t2")
	pushOnly.Settings.EmailNotifications = false
	f.users.Add(pushOnly)

	if err := f.dispatcher.HandlePetCreated(context.Background(), rex); err != nil {
		t.Fatal(err)
	}

	if len(f.push.batches) != 1 {
		t.Fatalf("expected exactly one user pushed, got %d batches", len(f.push.batches))
	}
	if f.push.batches[0][0].Token != "t2" {
		t.Errorf("wrong user pushed: %q", f.push.batches[0][0].Token)
	}
	if _, total, _ := f.emails.List(context.Background(), domain.ListFilter{}); total != 0 {
		t.Fatalf("no email records expected, got %d", total)
	}
}

func TestHandleAdoptionRequested(t *testing.T) {
	shelter := &domain.Shelter{ID: "shelter-1", Name: "Happy Paws", Email: "contact@happypaws.org"}
	f := newFixture([]*domain.Pet{rex}, []*domain.Shelter{shelter})

	adoption := &domain.Adoption{ID: "a-1", PetID: "pet-1", AdopterName: "Bob", AdopterEmail: "bob@example.com"}
	if err := f.dispatcher.HandleAdoptionRequested(context.Background(), adoption); err != nil {
		t.Fatal(err)
	}

	records, total, _ := f.emails.List(context.Background(), domain.ListFilter{})
	if total != 1 {
		t.Fatalf("expected 1 email record, got %d", total)
	}
	if records[0].Email != "contact@happypaws.org" {
		t.Errorf("record addressed to %q", records[0].Email)
	}
	if records[0].Subject != "New Adoption Request - Rex" {
		t.Errorf("unexpected subject: %q", records[0].Subject)
	}
	if records[0].Data["adoptionId"] != "a-1" {
		t.Errorf("data missing adoption id: %v", records[0].Data)
	}
}

// A single-recipient flow aborts with no partial record when a lookup fails.
func TestHandleAdoptionRequested_MissingPetAborts(t *testing.T) {
	f := newFixture(nil, nil)

	adoption := &domain.Adoption{ID: "a-1", PetID: "ghost"}
	err := f.dispatcher.HandleAdoptionRequested(context.Background(), adoption)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, total, _ := f.emails.List(context.Background(), domain.ListFilter{}); total != 0 {
		t.Fatalf("no record may be written on abort, got %d", total)
	}
}

func TestSendPush_Errors(t *testing.T) {
	f := newFixture(nil, nil)
	f.users.Add(&domain.User{ID: "tokenless", Settings: &domain.NotificationSettings{}})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.dispatcher.SendPush(context.Background(), "ghost", "Hi", "there", nil)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("zero tokens", func(t *testing.T) {
		_, err := f.dispatcher.SendPush(context.Background(), "tokenless", "Hi", "there", nil)
		if !errors.Is(err, domain.ErrNoDeviceTokens) {
			t.Fatalf("expected ErrNoDeviceTokens, got %v", err)
		}
	})

	t.Run("empty user id", func(t *testing.T) {
		_, err := f.dispatcher.SendPush(context.Background(), "", "Hi", "there", nil)
		if !errors.Is(err, domain.ErrInvalidUserID) {
			t.Fatalf("expected ErrInvalidUserID, got %v", err)
		}
	})
}

// Per-token results come back unmodified: one stale token fails, the
// other succeeds, and the fan-out neither retries nor prunes.
func TestSendPush_PerTokenResults(t *testing.T) {
	f := newFixture(nil, nil)
	f.users.Add(optedInUser("u1", "tok-good", "tok-stale"))
	f.push.failTokens["tok-stale"] = true

	results, err := f.dispatcher.SendPush(context.Background(), "u1", "Hello", "World", map[string]string{"type": "new_pet"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Success || results[1].Success {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[1].Error == "" {
		t.Fatal("failed token must carry the transport error")
	}
}

func TestSendAppointmentReminders(t *testing.T) {
	f := newFixture(nil, nil)
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// appointments:true, emailNotifications:false → push only.
	pushOnly := optedInUser("u1", "tok-1")
	pushOnly.Settings.EmailNotifications = false
	f.users.Add(pushOnly)

	f.apps.Appointments = []*domain.Appointment{
		{ID: "ap-1", UserID: "u1", PetName: "Rex", AppointmentType: "Vaccination",
			Date: tomorrow, Time: "10:00", Status: domain.AppointmentStatusConfirmed},
		// Not confirmed: no reminder.
		{ID: "ap-2", UserID: "u1", PetName: "Rex", Date: tomorrow, Status: "pending"},
		// Next week: out of window.
		{ID: "ap-3", UserID: "u1", PetName: "Rex", Date: tomorrow.AddDate(0, 0, 7),
			Status: domain.AppointmentStatusConfirmed},
		// Unknown user: skipped, not fatal.
		{ID: "ap-4", UserID: "ghost", PetName: "Milo", Date: tomorrow,
			Status: domain.AppointmentStatusConfirmed},
	}

	if err := f.dispatcher.SendAppointmentReminders(context.Background(), now); err != nil {
		t.Fatal(err)
	}

	if len(f.push.batches) != 1 {
		t.Fatalf("expected exactly 1 reminder push, got %d", len(f.push.batches))
	}
	if f.push.batches[0][0].Data["type"] != "appointment_reminder" {
		t.Errorf("push data type = %q", f.push.batches[0][0].Data["type"])
	}
	if _, total, _ := f.emails.List(context.Background(), domain.ListFilter{}); total != 0 {
		t.Fatalf("email opt-out must produce no email record, got %d", total)
	}
}

func TestCleanupOldNotifications(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	now := time.Date(2026, 8, 29, 2, 0, 0, 0, time.UTC)

	old := &domain.EmailNotification{
		ID: "old", Email: "a@b.c", Subject: "s", Body: "b",
		Status: domain.StatusSent, CreatedAt: now.AddDate(0, 0, -31),
	}
	edge := &domain.EmailNotification{
		ID: "edge", Email: "a@b.c", Subject: "s", Body: "b",
		Status: domain.StatusSent, CreatedAt: now.AddDate(0, 0, -29),
	}
	_ = f.emails.Create(ctx, old)
	_ = f.emails.Create(ctx, edge)

	if err := f.dispatcher.CleanupOldNotifications(ctx, now); err != nil {
		t.Fatal(err)
	}
	if f.emails.Len() != 1 {
		t.Fatalf("expected exactly the expired record removed, %d left", f.emails.Len())
	}
	if _, err := f.emails.GetByID(ctx, "edge"); err != nil {
		t.Fatal("record inside the retention window must survive")
	}

	// Running the sweep again is a no-op.
	if err := f.dispatcher.CleanupOldNotifications(ctx, now); err != nil {
		t.Fatal(err)
	}
	if f.emails.Len() != 1 {
		t.Fatalf("second run must delete nothing, %d left", f.emails.Len())
	}
}

func TestCleanupOldNotifications_StoreFailure(t *testing.T) {
	f := newFixture(nil, nil)
	f.emails.DeleteErr = errors.New("batch commit rejected")

	err := f.dispatcher.CleanupOldNotifications(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected sweep error to surface for logging")
	}
}
