package queue

import (
	"context"

	"github.com/pawfectcare/notifier/internal/domain"
)

// Item is the minimal data placed on the queue. Workers fetch the full
// record from the DB using the ID, keeping the queue lightweight and
// the durable record authoritative.
type Item struct {
	NotificationID string
}

// DeliveryQueue is a buffered channel of email-record IDs sitting
// between the dispatcher and the mail workers. The durable pending row
// is written first, so a dropped or lost item only delays delivery
// until the recovery worker re-enqueues it.
type DeliveryQueue struct {
	items chan Item
}

func New(capacity int) *DeliveryQueue {
	return &DeliveryQueue{items: make(chan Item, capacity)}
}

// Enqueue is non-blocking: if the queue is full, ErrQueueFull is
// returned immediately rather than blocking the caller. The record
// stays pending and gets picked up by the recovery worker.
func (q *DeliveryQueue) Enqueue(item Item) error {
	select {
	case q.items <- item:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until an item is available or ctx is cancelled.
// Returns (Item{}, false) when ctx is cancelled (graceful shutdown).
func (q *DeliveryQueue) Dequeue(ctx context.Context) (Item, bool) {
	select {
	case item := <-q.items:
		return item, true
	case <-ctx.Done():
		return Item{}, false
	}
}

// Depth returns the current number of waiting items, for the metrics
// snapshot endpoint and the queue-depth gauge.
func (q *DeliveryQueue) Depth() int {
	return len(q.items)
}
