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

const rewardCategoryColumns = `id, name, description, type, icon, color, visibility, parent_id, created_by,
	creator_role, is_system, display_order, is_active, created_at, updated_at`

type rewardCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewRewardCategoryRepository returns a Postgres-backed implementation of RewardCategoryRepository.
func NewRewardCategoryRepository(pool *pgxpool.Pool) repository.RewardCategoryRepository {
	return &rewardCategoryRepository{pool: pool}
}

func (r *rewardCategoryRepository) GetByID(ctx context.Context, id string) (*domain.RewardCategory, error) {
	query := `SELECT ` + rewardCategoryColumns + ` FROM reward_categories WHERE id = $1`
	return scanRewardCategory(r.pool.QueryRow(ctx, query, id))
}

func (r *rewardCategoryRepository) List(ctx context.Context, includeInactive bool) ([]domain.RewardCategory, error) {
	query := `SELECT ` + rewardCategoryColumns + ` FROM reward_categories
	WHERE is_active OR $1
	ORDER BY display_order, name`

	rows, err := r.pool.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.RewardCategory, 0)
	for rows.Next() {
		category, err := scanRewardCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func (r *rewardCategoryRepository) Create(ctx context.Context, category *domain.RewardCategory) (*domain.RewardCategory, error) {
	if category == nil {
		return nil, domain.ErrInvalidPayload
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO reward_categories (id, name, description, type, icon, color, visibility, parent_id, created_by,
		creator_role, is_system, display_order, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, TRUE)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.Type,
		category.Icon,
		category.Color,
		category.Visibility,
		nullString(category.ParentID),
		category.CreatedBy,
		string(category.CreatorRole),
		category.IsSystem,
		category.DisplayOrder,
	).Scan(&category.CreatedAt, &category.UpdatedAt); err != nil {
		return nil, err
	}
	category.IsActive = true
	return category, nil
}

func (r *rewardCategoryRepository) Update(ctx context.Context, category *domain.RewardCategory) error {
	if category == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE reward_categories
	SET name = $2,
		description = $3,
		type = $4,
		icon = $5,
		color = $6,
		visibility = $7,
		display_order = $8,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.Type,
		category.Icon,
		category.Color,
		category.Visibility,
		category.DisplayOrder,
	).Scan(&category.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (r *rewardCategoryRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reward_categories SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func scanRewardCategory(row rowScanner) (*domain.RewardCategory, error) {
	var (
		c      domain.RewardCategory
		parent *string
		role   string
	)
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Type,
		&c.Icon,
		&c.Color,
		&c.Visibility,
		&parent,
		&c.CreatedBy,
		&role,
		&c.IsSystem,
		&c.DisplayOrder,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	c.ParentID = deref(parent)
	c.CreatorRole = domain.Role(role)
	return &c, nil
}
