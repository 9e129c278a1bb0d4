package domain

import "time"

// Channel is the delivery channel for a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
)

// Status tracks the lifecycle of an email notification record.
// pending is the only non-terminal state: a record moves to sent or
// failed exactly once and never leaves either.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

func (s Status) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

// EmailNotification is the durable outbound-email record. The
// dispatcher creates it with status=pending; exactly one mail worker
// invocation transitions it to a terminal status.
type EmailNotification struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	Subject      string            `json:"subject"`
	Body         string            `json:"body"`
	Data         map[string]string `json:"data,omitempty"`
	Status       Status            `json:"status"`
	ErrorMessage *string           `json:"error,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
}

// PushMessage is a single device-targeted push payload. One message is
// built per registered device token and the whole group is handed to
// the push transport as one batch.
type PushMessage struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushResult is the per-message outcome reported by the push transport.
// Results are surfaced to callers unmodified; a failed token must not
// affect delivery to the other tokens in the batch.
type PushResult struct {
	Token     string `json:"token"`
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ListFilter holds query parameters for paginated record listing.
type ListFilter struct {
	Status *Status
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}
