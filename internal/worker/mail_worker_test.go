package worker_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pawfectcare/notifier/internal/domain"
	"github.com/pawfectcare/notifier/internal/queue"
	"github.com/pawfectcare/notifier/internal/ratelimiter"
	"github.com/pawfectcare/notifier/internal/repository"
	"github.com/pawfectcare/notifier/internal/worker"
)

// fakeMailer records sends and can be told to fail.
type fakeMailer struct {
	sendErr error
	calls   int
	lastTo  string
	lastSub string
	lastHTM string
}

func (f *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	f.calls++
	f.lastTo, f.lastSub, f.lastHTM = to, subject, html
	return f.sendErr
}

func newWorker(repo repository.EmailNotificationRepository, mailer *fakeMailer) *worker.MailWorker {
	return worker.NewMailWorker(
		0, queue.New(10), repo, mailer,
		ratelimiter.New(1000), zap.NewNop(), nil, nil,
	)
}

func pendingRecord(id string) *domain.EmailNotification {
	return &domain.EmailNotification{
		ID:        id,
		Email:     "alice@example.com",
		Subject:   "New Pet Available - Rex",
		Body:      "Hello Alice,\n\nGreat news!",
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMailWorker_MarksSentOnSuccess(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMockEmailNotificationRepository()
	mailer := &fakeMailer{}
	_ = repo.Create(ctx, pendingRecord("n-1"))

	w := newWorker(repo, mailer)
	w.Process(ctx, queue.Item{NotificationID: "n-1"})

	if mailer.calls != 1 {
		t.Fatalf("expected 1 transport call, got %d", mailer.calls)
	}
	if mailer.lastTo != "alice@example.com" || mailer.lastSub != "New Pet Available - Rex" {
		t.Errorf("unexpected transport args: to=%q subject=%q", mailer.lastTo, mailer.lastSub)
	}

	n, _ := repo.GetByID(ctx, "n-1")
	if n.Status != domain.StatusSent {
		t.Fatalf("expected status=sent, got %s", n.Status)
	}
	if n.SentAt == nil {
		t.Fatal("expected sentAt to be stamped")
	}
	if n.ErrorMessage != nil {
		t.Fatalf("expected no error message, got %q", *n.ErrorMessage)
	}
}

func TestMailWorker_MarksFailedOnTransportError(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMockEmailNotificationRepository()
	mailer := &fakeMailer{sendErr: errors.New("SMTP timeout")}
	_ = repo.Create(ctx, pendingRecord("n-1"))

	w := newWorker(repo, mailer)
	w.Process(ctx, queue.Item{NotificationID: "n-1"})

	n, _ := repo.GetByID(ctx, "n-1")
	if n.Status != domain.StatusFailed {
		t.Fatalf("expected status=failed, got %s", n.Status)
	}
	if n.ErrorMessage == nil || *n.ErrorMessage != "SMTP timeout" {
		t.Fatalf("expected error message %q, got %v", "SMTP timeout", n.ErrorMessage)
	}
	if n.SentAt != nil {
		t.Fatal("sentAt must stay absent on failure")
	}
}

// Re-processing an already-terminal record must be detected and
// skipped: no transport call, no status change.
func TestMailWorker_TerminalRecordIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMockEmailNotificationRepository()
	mailer := &fakeMailer{}
	_ = repo.Create(ctx, pendingRecord("n-1"))
	_ = repo.MarkSent(ctx, "n-1", time.Now().UTC())

	w := newWorker(repo, mailer)
	w.Process(ctx, queue.Item{NotificationID: "n-1"})

	if mailer.calls != 0 {
		t.Fatalf("expected no transport call for terminal record, got %d", mailer.calls)
	}
	n, _ := repo.GetByID(ctx, "n-1")
	if n.Status != domain.StatusSent {
		t.Fatalf("terminal status must not change, got %s", n.Status)
	}
}

func TestMailWorker_MissingRecordIsNoOp(t *testing.T) {
	repo := repository.NewMockEmailNotificationRepository()
	mailer := &fakeMailer{}

	w := newWorker(repo, mailer)
	w.Process(context.Background(), queue.Item{NotificationID: "ghost"})

	if mailer.calls != 0 {
		t.Fatalf("expected no transport call, got %d", mailer.calls)
	}
}

func TestRenderHTML(t *testing.T) {
	html := worker.RenderHTML("line one\nline two")

	if !strings.Contains(html, "line one<br>line two") {
		t.Error("newlines not converted to <br>")
	}
	if !strings.Contains(html, "PawfectCare") {
		t.Error("branding shell missing")
	}
}

func TestRecoveryWorker_ReenqueuesStalePending(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMockEmailNotificationRepository()
	q := queue.New(10)

	stale := pendingRecord("stale")
	stale.CreatedAt = time.Now().UTC().Add(-10 * time.Minute)
	_ = repo.Create(ctx, stale)

	fresh := pendingRecord("fresh")
	_ = repo.Create(ctx, fresh)

	rw := worker.NewRecoveryWorker(repo, q, 10*time.Millisecond, 5*time.Minute, zap.NewNop())
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		rw.Run(runCtx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for q.Depth() == 0 {
		select {
		case <-deadline:
			t.Fatal("stale record was never re-enqueued")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	// The poller may tick more than once; every enqueued item must be
	// the stale record, never the fresh one.
	for q.Depth() > 0 {
		item, _ := q.Dequeue(ctx)
		if item.NotificationID != "stale" {
			t.Fatalf("unexpected record re-enqueued: %s", item.NotificationID)
		}
	}
}
