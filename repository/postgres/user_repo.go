package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
		SELECT id, email, first_name, last_name, avatar, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
		SELECT id, email, first_name, last_name, avatar, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// Upsert mirrors the identity carried by a verified token so profiles can be joined to names.
func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (id, email, first_name, last_name, avatar)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
		first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), users.first_name),
		last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), users.last_name),
		avatar = COALESCE(NULLIF(EXCLUDED.avatar, ''), users.avatar),
		updated_at = NOW()
	RETURNING created_at, updated_at;
	`

	return r.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Avatar,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// personSummaries joins role profiles of one table to their users.
func personSummaries(ctx context.Context, pool *pgxpool.Pool, table string, ids []string) ([]domain.PersonSummary, error) {
	people := make([]domain.PersonSummary, 0, len(ids))
	if len(ids) == 0 {
		return people, nil
	}

	query := `
	SELECT p.id, p.user_id, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), COALESCE(u.email, ''), COALESCE(u.avatar, '')
	FROM ` + table + ` p
	LEFT JOIN users u ON u.id = p.user_id
	WHERE p.id = ANY($1)
	ORDER BY p.created_at
	`
	rows, err := pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.PersonSummary
		if err := rows.Scan(&p.ProfileID, &p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.Avatar); err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, rows.Err()
}
