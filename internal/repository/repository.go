package repository

import (
	"context"
	"time"

	"github.com/pawfectcare/notifier/internal/domain"
)

// EmailNotificationRepository defines persistence for outbound email
// records. MarkSent and MarkFailed guard the pending→terminal
// transition at the store level: they only apply to records still in
// status=pending and return domain.ErrAlreadyFinal otherwise.
type EmailNotificationRepository interface {
	Create(ctx context.Context, n *domain.EmailNotification) error
	GetByID(ctx context.Context, id string) (*domain.EmailNotification, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.EmailNotification, int, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, errMsg string) error

	// FindStalePending returns pending records created before the given
	// instant, for the recovery worker to re-enqueue after a restart or
	// a queue-full drop.
	FindStalePending(ctx context.Context, before time.Time) ([]*domain.EmailNotification, error)

	// DeleteOlderThan removes every notification record created before
	// cutoff as a single atomic batch and reports how many went.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserRepository reads user accounts and their notification preferences.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// FindNewPetSubscribers returns users whose stored settings opt in
	// to new-pet broadcasts. Users without a settings object never match.
	FindNewPetSubscribers(ctx context.Context) ([]*domain.User, error)
}

// PetRepository reads the pet catalogue owned by the main backend.
type PetRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Pet, error)
}

// ShelterRepository reads shelter contact records.
type ShelterRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Shelter, error)
}

// AppointmentRepository reads scheduled appointments for the reminder job.
type AppointmentRepository interface {
	// FindConfirmedBetween returns confirmed appointments whose date
	// falls in [from, to).
	FindConfirmedBetween(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error)
}
