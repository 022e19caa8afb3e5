package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

type visibilityRepository struct {
	pool *pgxpool.Pool
}

// NewVisibilityRepository returns a Postgres-backed implementation of VisibilityRepository.
func NewVisibilityRepository(pool *pgxpool.Pool) repository.VisibilityRepository {
	return &visibilityRepository{pool: pool}
}

func (r *visibilityRepository) Upsert(ctx context.Context, v *domain.TaskVisibility) (*domain.TaskVisibility, error) {
	if v == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO task_visibilities (id, task_id, toggled_for_user_id, toggled_by, toggle_by_role, is_visible)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (task_id, toggled_for_user_id) DO UPDATE
	SET toggled_by = EXCLUDED.toggled_by,
		toggle_by_role = EXCLUDED.toggle_by_role,
		is_visible = EXCLUDED.is_visible,
		updated_at = NOW()
	RETURNING id, task_id, toggled_for_user_id, toggled_by, toggle_by_role, is_visible, created_at, updated_at
	`

	return scanVisibility(r.pool.QueryRow(ctx, query,
		uuid.NewString(),
		v.TaskID,
		v.ToggledForUserID,
		v.ToggledBy,
		string(v.ToggleByRole),
		v.IsVisible,
	))
}

func (r *visibilityRepository) Get(ctx context.Context, taskID, studentID string) (*domain.TaskVisibility, error) {
	const query = `
	SELECT id, task_id, toggled_for_user_id, toggled_by, toggle_by_role, is_visible, created_at, updated_at
	FROM task_visibilities
	WHERE task_id = $1 AND toggled_for_user_id = $2
	`
	v, err := scanVisibility(r.pool.QueryRow(ctx, query, taskID, studentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func (r *visibilityRepository) ListForStudents(ctx context.Context, studentIDs []string) ([]domain.TaskVisibility, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}

	const query = `
	SELECT id, task_id, toggled_for_user_id, toggled_by, toggle_by_role, is_visible, created_at, updated_at
	FROM task_visibilities
	WHERE toggled_for_user_id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, studentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TaskVisibility
	for rows.Next() {
		v, err := scanVisibility(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

func scanVisibility(row rowScanner) (*domain.TaskVisibility, error) {
	var (
		v    domain.TaskVisibility
		role string
	)
	if err := row.Scan(
		&v.ID,
		&v.TaskID,
		&v.ToggledForUserID,
		&v.ToggledBy,
		&role,
		&v.IsVisible,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	v.ToggleByRole = domain.Role(role)
	return &v, nil
}
