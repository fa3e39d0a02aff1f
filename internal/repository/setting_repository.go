package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/user-service/internal/domain"
)

// SettingRepository defines persistence access for runtime configuration.
type SettingRepository interface {
	GetByKeys(ctx context.Context, keys []string) ([]*domain.Setting, error)
	Upsert(ctx context.Context, key, value string) (*domain.Setting, error)
}

type settingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository returns a Postgres-backed implementation.
func NewSettingRepository(pool *pgxpool.Pool) SettingRepository {
	return &settingRepository{pool: pool}
}

func (r *settingRepository) GetByKeys(ctx context.Context, keys []string) ([]*domain.Setting, error) {
	if len(keys) == 0 {
		return []*domain.Setting{}, nil
	}

	const query = `
        SELECT id, key, value, created_at, updated_at
        FROM settings WHERE key = ANY($1)`

	rows, err := r.pool.Query(ctx, query, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]*domain.Setting, 0, len(keys))
	for rows.Next() {
		var setting domain.Setting
		if err := rows.Scan(
			&setting.ID,
			&setting.Key,
			&setting.Value,
			&setting.CreatedAt,
			&setting.UpdatedAt,
		); err != nil {
			return nil, err
		}
		settings = append(settings, &setting)
	}
	return settings, rows.Err()
}

func (r *settingRepository) Upsert(ctx context.Context, key, value string) (*domain.Setting, error) {
	const query = `
        INSERT INTO settings (key, value)
        VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()
        RETURNING id, key, value, created_at, updated_at`

	var setting domain.Setting
	if err := r.pool.QueryRow(ctx, query, key, value).Scan(
		&setting.ID,
		&setting.Key,
		&setting.Value,
		&setting.CreatedAt,
		&setting.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &setting, nil
}
