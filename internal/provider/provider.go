package provider

import (
	"context"

	"github.com/pawfectcare/notifier/internal/domain"
)

// MailSender abstracts the outbound email transport. Mocking this
// interface in tests gives full control over transport behaviour
// without touching a real SMTP server.
type MailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// PushSender abstracts batched push delivery. Implementations submit
// every message in one transport call and report a per-message result;
// a single failed token never fails the batch itself.
type PushSender interface {
	SendBatch(ctx context.Context, messages []domain.PushMessage) ([]domain.PushResult, error)
}
