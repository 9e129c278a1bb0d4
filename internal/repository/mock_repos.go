package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pawfectcare/notifier/internal/domain"
)

// Hand-written, in-memory implementations of the repository interfaces
// used in unit tests. No mock-generation library needed.

// MockEmailNotificationRepository stores records in a map and enforces
// the same pending-only transition guard as the Postgres implementation.
type MockEmailNotificationRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.EmailNotification

	// Optional error overrides — set in tests to simulate failure paths.
	CreateErr error
	DeleteErr error
}

func NewMockEmailNotificationRepository() *MockEmailNotificationRepository {
	return &MockEmailNotificationRepository{records: make(map[string]*domain.EmailNotification)}
}

func (m *MockEmailNotificationRepository) Create(_ context.Context, n *domain.EmailNotification) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *n
	m.records[n.ID] = &clone
	return nil
}

func (m *MockEmailNotificationRepository) GetByID(_ context.Context, id string) (*domain.EmailNotification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (m *MockEmailNotificationRepository) List(_ context.Context, f domain.ListFilter) ([]*domain.EmailNotification, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.EmailNotification
	for _, n := range m.records {
		if f.Status != nil && n.Status != *f.Status {
			continue
		}
		clone := *n
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, len(result), nil
}

func (m *MockEmailNotificationRepository) MarkSent(_ context.Context, id string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	if n.Status.IsTerminal() {
		return domain.ErrAlreadyFinal
	}
	n.Status = domain.StatusSent
	n.SentAt = &sentAt
	n.ErrorMessage = nil
	return nil
}

func (m *MockEmailNotificationRepository) MarkFailed(_ context.Context, id, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	if n.Status.IsTerminal() {
		return domain.ErrAlreadyFinal
	}
	n.Status = domain.StatusFailed
	n.ErrorMessage = &errMsg
	return nil
}

func (m *MockEmailNotificationRepository) FindStalePending(_ context.Context, before time.Time) ([]*domain.EmailNotification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.EmailNotification
	for _, n := range m.records {
		if n.Status == domain.StatusPending && n.CreatedAt.Before(before) {
			clone := *n
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *MockEmailNotificationRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteErr != nil {
		return 0, m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, n := range m.records {
		if n.CreatedAt.Before(cutoff) {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports the number of stored records; used by retention tests.
func (m *MockEmailNotificationRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// MockUserRepository serves a fixed set of users keyed by ID.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	GetByIDErr error
}

func NewMockUserRepository(users ...*domain.User) *MockUserRepository {
	m := &MockUserRepository{users: make(map[string]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *MockUserRepository) Add(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *MockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *MockUserRepository) FindNewPetSubscribers(_ context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var subscribers []*domain.User
	for _, u := range m.users {
		if u.Settings.WantsNewPets() {
			clone := *u
			subscribers = append(subscribers, &clone)
		}
	}
	sort.Slice(subscribers, func(i, j int) bool { return subscribers[i].ID < subscribers[j].ID })
	return subscribers, nil
}

// MockPetRepository serves a fixed set of pets keyed by ID.
type MockPetRepository struct {
	pets map[string]*domain.Pet
}

func NewMockPetRepository(pets ...*domain.Pet) *MockPetRepository {
	m := &MockPetRepository{pets: make(map[string]*domain.Pet)}
	for _, p := range pets {
		m.pets[p.ID] = p
	}
	return m
}

func (m *MockPetRepository) GetByID(_ context.Context, id string) (*domain.Pet, error) {
	p, ok := m.pets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

// MockShelterRepository serves a fixed set of shelters keyed by ID.
type MockShelterRepository struct {
	shelters map[string]*domain.Shelter
}

func NewMockShelterRepository(shelters ...*domain.Shelter) *MockShelterRepository {
	m := &MockShelterRepository{shelters: make(map[string]*domain.Shelter)}
	for _, s := range shelters {
		m.shelters[s.ID] = s
	}
	return m
}

func (m *MockShelterRepository) GetByID(_ context.Context, id string) (*domain.Shelter, error) {
	s, ok := m.shelters[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

// MockAppointmentRepository serves a fixed slice of appointments.
type MockAppointmentRepository struct {
	Appointments []*domain.Appointment
	FindErr      error
}

func (m *MockAppointmentRepository) FindConfirmedBetween(_ context.Context, from, to time.Time) ([]*domain.Appointment, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var result []*domain.Appointment
	for _, a := range m.Appointments {
		if a.Status != domain.AppointmentStatusConfirmed {
			continue
		}
		if a.Date.Before(from) || !a.Date.Before(to) {
			continue
		}
		clone := *a
		result = append(result, &clone)
	}
	return result, nil
}
