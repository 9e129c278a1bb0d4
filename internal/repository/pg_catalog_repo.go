package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawfectcare/notifier/internal/domain"
)

// The pet, shelter, and appointment tables are owned by the main
// backend; this service only ever reads them.

type pgPetRepository struct {
	pool *pgxpool.Pool
}

func NewPgPetRepository(pool *pgxpool.Pool) PetRepository {
	return &pgPetRepository{pool: pool}
}

func (r *pgPetRepository) GetByID(ctx context.Context, id string) (*domain.Pet, error) {
	var p domain.Pet
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, species, breed, age, health_status, adoption_fee, description, shelter_id
		FROM pets WHERE id = $1`, id).Scan(
		&p.ID, &p.Name, &p.Species, &p.Breed, &p.Age,
		&p.HealthStatus, &p.AdoptionFee, &p.Description, &p.ShelterID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pet: %w", err)
	}
	return &p, nil
}

type pgShelterRepository struct {
	pool *pgxpool.Pool
}

func NewPgShelterRepository(pool *pgxpool.Pool) ShelterRepository {
	return &pgShelterRepository{pool: pool}
}

func (r *pgShelterRepository) GetByID(ctx context.Context, id string) (*domain.Shelter, error) {
	var s domain.Shelter
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email FROM shelters WHERE id = $1`, id).Scan(&s.ID, &s.Name, &s.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shelter: %w", err)
	}
	return &s, nil
}

type pgAppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &pgAppointmentRepository{pool: pool}
}

func (r *pgAppointmentRepository) FindConfirmedBetween(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, pet_name, appointment_type, appointment_date, appointment_time, status
		FROM appointments
		WHERE appointment_date >= $1 AND appointment_date < $2 AND status = $3`,
		from, to, domain.AppointmentStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("find confirmed appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(&a.ID, &a.UserID, &a.PetName, &a.AppointmentType, &a.Date, &a.Time, &a.Status); err != nil {
			return nil, err
		}
		appointments = append(appointments, &a)
	}
	return appointments, rows.Err()
}
