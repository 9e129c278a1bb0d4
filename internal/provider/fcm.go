package provider

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/pawfectcare/notifier/internal/domain"
)

// FCMSender delivers push notifications through Firebase Cloud
// Messaging. SendEach reports per-message outcomes, so one revoked or
// expired token cannot abort delivery to the remaining devices.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender initialises the Firebase app from a service-account
// credentials file and returns a ready messaging client.
func NewFCMSender(ctx context.Context, credentialsFile string) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}

	return &FCMSender{client: client}, nil
}

func (s *FCMSender) SendBatch(ctx context.Context, messages []domain.PushMessage) ([]domain.PushResult, error) {
	fcmMessages := make([]*messaging.Message, len(messages))
	for i, m := range messages {
		fcmMessages[i] = &messaging.Message{
			Token: m.Token,
			Notification: &messaging.Notification{
				Title: m.Title,
				Body:  m.Body,
			},
			Data: m.Data,
		}
	}

	resp, err := s.client.SendEach(ctx, fcmMessages)
	if err != nil {
		return nil, fmt.Errorf("fcm send batch: %w", err)
	}

	results := make([]domain.PushResult, len(resp.Responses))
	for i, r := range resp.Responses {
		results[i] = domain.PushResult{
			Token:     messages[i].Token,
			Success:   r.Success,
			MessageID: r.MessageID,
		}
		if r.Error != nil {
			results[i].Error = r.Error.Error()
		}
	}
	return results, nil
}

// compile-time check that FCMSender implements PushSender
var _ PushSender = (*FCMSender)(nil)
