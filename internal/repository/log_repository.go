package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/user-service/internal/domain"
)

// LogRepository defines persistence access for activity-log entries.
type LogRepository interface {
	Create(ctx context.Context, entry *domain.LogEntry) error
	List(ctx context.Context, page, size int) ([]*domain.LogEntry, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type logRepository struct {
	pool *pgxpool.Pool
}

// NewLogRepository returns a Postgres-backed implementation.
func NewLogRepository(pool *pgxpool.Pool) LogRepository {
	return &logRepository{pool: pool}
}

func (r *logRepository) Create(ctx context.Context, entry *domain.LogEntry) error {
	const query = `
        INSERT INTO logs (message, level, user_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		entry.Message,
		entry.Level,
		entry.UserID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// List returns entries newest first, joined with the owning username
// when the user still exists.
func (r *logRepository) List(ctx context.Context, page, size int) ([]*domain.LogEntry, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}

	const query = `
        SELECT l.id, l.message, l.level, l.user_id, u.username, l.created_at
        FROM logs l
        LEFT JOIN users u ON u.id = l.user_id
        ORDER BY l.created_at DESC
        OFFSET $1 LIMIT $2`

	rows, err := r.pool.Query(ctx, query, page*size, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.LogEntry, 0, size)
	for rows.Next() {
		var entry domain.LogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Message,
			&entry.Level,
			&entry.UserID,
			&entry.Username,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (r *logRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM logs`).Scan(&count)
	return count, err
}

func (r *logRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM logs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *logRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM logs`)
	return err
}
