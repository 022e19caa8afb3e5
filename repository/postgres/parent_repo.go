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

type parentRepository struct {
	pool *pgxpool.Pool
}

// NewParentRepository returns a Postgres-backed implementation of ParentRepository.
func NewParentRepository(pool *pgxpool.Pool) repository.ParentRepository {
	return &parentRepository{pool: pool}
}

func (r *parentRepository) GetByID(ctx context.Context, id string) (*domain.Parent, error) {
	const query = `SELECT id, user_id, child_ids, link_code, created_at, updated_at FROM parents WHERE id = $1`
	return scanParent(r.pool.QueryRow(ctx, query, id))
}

func (r *parentRepository) GetByUserID(ctx context.Context, userID string) (*domain.Parent, error) {
	const query = `SELECT id, user_id, child_ids, link_code, created_at, updated_at FROM parents WHERE user_id = $1`
	return scanParent(r.pool.QueryRow(ctx, query, userID))
}

func (r *parentRepository) GetByLinkCode(ctx context.Context, code string) (*domain.Parent, error) {
	const query = `SELECT id, user_id, child_ids, link_code, created_at, updated_at FROM parents WHERE link_code = $1`
	return scanParent(r.pool.QueryRow(ctx, query, code))
}

func (r *parentRepository) Create(ctx context.Context, parent *domain.Parent) (*domain.Parent, error) {
	if parent == nil {
		return nil, domain.ErrInvalidPayload
	}
	if parent.ID == "" {
		parent.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO parents (id, user_id, link_code)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id) DO NOTHING
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query, parent.ID, parent.UserID, parent.LinkCode).
		Scan(&parent.CreatedAt, &parent.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileExists
		}
		return nil, err
	}
	parent.ChildIDs = []string{}
	return parent, nil
}

func (r *parentRepository) Summaries(ctx context.Context, ids []string) ([]domain.PersonSummary, error) {
	return personSummaries(ctx, r.pool, "parents", ids)
}

func scanParent(row rowScanner) (*domain.Parent, error) {
	var p domain.Parent
	if err := row.Scan(&p.ID, &p.UserID, &p.ChildIDs, &p.LinkCode, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrParentNotFound
		}
		return nil, err
	}
	return &p, nil
}
