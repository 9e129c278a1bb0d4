package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawfectcare/notifier/internal/domain"
)

type pgEmailNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgEmailNotificationRepository returns an EmailNotificationRepository
// backed by PostgreSQL.
func NewPgEmailNotificationRepository(pool *pgxpool.Pool) EmailNotificationRepository {
	return &pgEmailNotificationRepository{pool: pool}
}

func (r *pgEmailNotificationRepository) Create(ctx context.Context, n *domain.EmailNotification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO email_notifications
			(id, email, subject, body, data, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.ID, n.Email, n.Subject, n.Body, n.Data, n.Status, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert email notification: %w", err)
	}
	return nil
}

func (r *pgEmailNotificationRepository) GetByID(ctx context.Context, id string) (*domain.EmailNotification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, subject, body, data, status, error_message, created_at, sent_at
		FROM email_notifications WHERE id = $1`, id)

	n, err := scanEmailNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return n, err
}

func (r *pgEmailNotificationRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.EmailNotification, int, error) {
	where, args := buildListWhere(f)
	offset := (f.Page - 1) * f.Limit

	var total int
	countQuery := "SELECT COUNT(*) FROM email_notifications" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count email notifications: %w", err)
	}

	args = append(args, f.Limit, offset)
	query := fmt.Sprintf(`
		SELECT id, email, subject, body, data, status, error_message, created_at, sent_at
		FROM email_notifications%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list email notifications: %w", err)
	}
	defer rows.Close()

	notifications, err := scanEmailNotifications(rows)
	return notifications, total, err
}

// MarkSent applies the pending→sent transition. The status guard in the
// WHERE clause makes the transition happen at most once even if the
// same record were processed twice.
func (r *pgEmailNotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE email_notifications
		SET status = 'sent', sent_at = $1, error_message = NULL
		WHERE id = $2 AND status = 'pending'`, sentAt, id)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return r.checkTransition(ctx, tag.RowsAffected(), id)
}

// MarkFailed applies the pending→failed transition, recording the
// transport error message on the record.
func (r *pgEmailNotificationRepository) MarkFailed(ctx context.Context, id, errMsg string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE email_notifications
		SET status = 'failed', error_message = $1
		WHERE id = $2 AND status = 'pending'`, errMsg, id)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return r.checkTransition(ctx, tag.RowsAffected(), id)
}

// checkTransition distinguishes "record absent" from "record already
// terminal" when a guarded update matched no rows.
func (r *pgEmailNotificationRepository) checkTransition(ctx context.Context, affected int64, id string) error {
	if affected > 0 {
		return nil
	}
	var status domain.Status
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM email_notifications WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check transition: %w", err)
	}
	return domain.ErrAlreadyFinal
}

func (r *pgEmailNotificationRepository) FindStalePending(ctx context.Context, before time.Time) ([]*domain.EmailNotification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, subject, body, data, status, error_message, created_at, sent_at
		FROM email_notifications
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at ASC
		LIMIT 500`, before)
	if err != nil {
		return nil, fmt.Errorf("find stale pending: %w", err)
	}
	defer rows.Close()
	return scanEmailNotifications(rows)
}

// DeleteOlderThan sweeps expired rows from both notification tables in
// one transaction so the retention run commits as a single batch.
func (r *pgEmailNotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin retention sweep: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var deleted int64
	for _, table := range []string{"notifications", "email_notifications"} {
		tag, err := tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, table), cutoff)
		if err != nil {
			return 0, fmt.Errorf("sweep %s: %w", table, err)
		}
		deleted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit retention sweep: %w", err)
	}
	return deleted, nil
}

// ---- helpers ----

func scanEmailNotification(row pgx.Row) (*domain.EmailNotification, error) {
	var n domain.EmailNotification
	err := row.Scan(
		&n.ID, &n.Email, &n.Subject, &n.Body, &n.Data,
		&n.Status, &n.ErrorMessage, &n.CreatedAt, &n.SentAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func scanEmailNotifications(rows pgx.Rows) ([]*domain.EmailNotification, error) {
	var result []*domain.EmailNotification
	for rows.Next() {
		n, err := scanEmailNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func buildListWhere(f domain.ListFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, val any) {
		args = append(args, val)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
