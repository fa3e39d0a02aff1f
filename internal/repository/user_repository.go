package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/user-service/internal/domain"
)

// ErrDuplicate signals a unique-constraint violation on email or username.
var ErrDuplicate = errors.New("duplicate value")

// UserRepository defines persistence access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id string, changes domain.UserChanges) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByIdentity(ctx context.Context, email, username string) (*domain.User, error)
	Delete(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, page, size int) ([]*domain.User, error)
	Count(ctx context.Context) (int, error)
	CountByAuthType(ctx context.Context) (map[domain.AuthType]int, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, forename, email, username, password_hash, role, avatar, auth_type, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Forename,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Avatar,
		&user.AuthType,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, forename, email, username, password_hash, role, avatar, auth_type)
        VALUES ($1, $2, LOWER($3), LOWER($4), $5, $6, $7, $8)
        RETURNING id, email, username, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Forename,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.Avatar,
		user.AuthType,
	).Scan(&user.ID, &user.Email, &user.Username, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *userRepository) Update(ctx context.Context, id string, changes domain.UserChanges) (*domain.User, error) {
	if changes.Empty() {
		return r.GetByID(ctx, id)
	}

	sets := make([]string, 0, 8)
	args := make([]any, 0, 8)
	add := func(expr string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if changes.Name != nil {
		add("name=$%d", *changes.Name)
	}
	if changes.Forename != nil {
		add("forename=$%d", *changes.Forename)
	}
	if changes.Email != nil {
		add("email=LOWER($%d)", *changes.Email)
	}
	if changes.Username != nil {
		add("username=LOWER($%d)", *changes.Username)
	}
	if changes.Avatar != nil {
		add("avatar=$%d", *changes.Avatar)
	}
	if changes.Role != nil {
		add("role=$%d", *changes.Role)
	}
	if changes.PasswordHash != nil {
		add("password_hash=$%d", *changes.PasswordHash)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
        UPDATE users SET %s, updated_at=NOW()
        WHERE id=$%d
        RETURNING `+userColumns, strings.Join(sets, ", "), len(args))

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	return user, err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username=LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

// GetByIdentity matches either email or username; empty arguments never match.
func (r *userRepository) GetByIdentity(ctx context.Context, email, username string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + ` FROM users
        WHERE (email=LOWER($1) AND $1 <> '') OR (username=LOWER($2) AND $2 <> '')
        LIMIT 1`
	return scanUser(r.pool.QueryRow(ctx, query, email, username))
}

func (r *userRepository) Delete(ctx context.Context, id string) (*domain.User, error) {
	const query = `DELETE FROM users WHERE id=$1 RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) List(ctx context.Context, page, size int) ([]*domain.User, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}

	const query = `
        SELECT ` + userColumns + ` FROM users
        ORDER BY created_at DESC
        OFFSET $1 LIMIT $2`

	rows, err := r.pool.Query(ctx, query, page*size, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0, size)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *userRepository) CountByAuthType(ctx context.Context) (map[domain.AuthType]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT auth_type, COUNT(*) FROM users GROUP BY auth_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[domain.AuthType]int)
	for rows.Next() {
		var authType domain.AuthType
		var count int
		if err := rows.Scan(&authType, &count); err != nil {
			return nil, err
		}
		stats[authType] = count
	}
	return stats, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
