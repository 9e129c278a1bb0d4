package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawfectcare/notifier/internal/domain"
)

type pgUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgUserRepository returns a UserRepository backed by PostgreSQL.
// notification_settings is a nullable JSONB column; NULL scans to a nil
// pointer, which the domain accessors treat as fully opted out.
func NewPgUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepository{pool: pool}
}

func (r *pgUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, name, fcm_tokens, notification_settings
		FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return u, err
}

func (r *pgUserRepository) FindNewPetSubscribers(ctx context.Context) ([]*domain.User, error) {
	// Rows with NULL settings never satisfy the predicate, so the
	// default-deny rule holds at the query level too.
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, fcm_tokens, notification_settings
		FROM users
		WHERE (notification_settings->>'newPets')::boolean IS TRUE`)
	if err != nil {
		return nil, fmt.Errorf("find new-pet subscribers: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.FCMTokens, &u.Settings); err != nil {
		return nil, err
	}
	return &u, nil
}
