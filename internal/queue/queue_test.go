package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pawfectcare/notifier/internal/domain"
	"github.com/pawfectcare/notifier/internal/queue"
)

func TestDeliveryQueue_EnqueueDequeue(t *testing.T) {
	q := queue.New(10)
	ctx := context.Background()

	if err := q.Enqueue(queue.Item{NotificationID: "n-1"}); err != nil {
		t.Fatal(err)
	}

	got, ok := q.Dequeue(ctx)
	if !ok {
		t.Fatal("expected item, got nothing")
	}
	if got.NotificationID != "n-1" {
		t.Fatalf("expected id=n-1, got %s", got.NotificationID)
	}
}

func TestDeliveryQueue_FullReturnsError(t *testing.T) {
	q := queue.New(1)

	if err := q.Enqueue(queue.Item{NotificationID: "a"}); err != nil {
		t.Fatal(err)
	}
	err := q.Enqueue(queue.Item{NotificationID: "b"})
	if !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if q.Depth() != 1 {
		t.Fatalf("expected depth=1, got %d", q.Depth())
	}
}

// Dequeue must return (_, false) when the context is cancelled while
// blocking, so workers can shut down cleanly.
func TestDeliveryQueue_ContextCancellation(t *testing.T) {
	q := queue.New(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue(ctx)
		done <- ok
	}()

	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after context cancellation")
	}
}
