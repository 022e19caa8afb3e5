package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

const rewardColumns = `r.id, r.title, r.description, r.category_id, r.points_cost, r.limited_quantity, r.quantity,
	r.created_by, r.creator_role, r.school_id, r.image, r.redemption_instructions, r.restrictions, r.is_visible,
	r.is_active, r.created_at, r.updated_at`

type rewardRepository struct {
	pool *pgxpool.Pool
}

// NewRewardRepository returns a Postgres-backed implementation of RewardRepository.
func NewRewardRepository(pool *pgxpool.Pool) repository.RewardRepository {
	return &rewardRepository{pool: pool}
}

func (r *rewardRepository) GetByID(ctx context.Context, id string) (*domain.Reward, error) {
	query := `SELECT ` + rewardColumns + `, FALSE FROM rewards r WHERE r.id = $1 AND r.is_active`
	return scanReward(r.pool.QueryRow(ctx, query, id))
}

func (r *rewardRepository) List(ctx context.Context, filter repository.RewardFilter) ([]domain.Reward, int, error) {
	var c conditions
	wishlistOf := c.arg(filter.WishlistOf)
	c.add("r.is_active")

	if !filter.IncludeHidden {
		c.add("r.is_visible")
	}
	if filter.CategoryID != "" {
		c.add("r.category_id = " + c.arg(filter.CategoryID))
	}
	if filter.CreatedBy != "" {
		c.add("r.created_by = " + c.arg(filter.CreatedBy))
	}
	if filter.SchoolID != "" {
		c.add("r.school_id = " + c.arg(filter.SchoolID))
	}
	if filter.MinCost > 0 {
		c.add("r.points_cost >= " + c.arg(filter.MinCost))
	}
	if filter.MaxCost > 0 {
		c.add("r.points_cost <= " + c.arg(filter.MaxCost))
	}
	if filter.Search != "" {
		term := c.arg("%" + filter.Search + "%")
		c.add(fmt.Sprintf("(r.title ILIKE %[1]s OR r.description ILIKE %[1]s)", term))
	}
	if filter.WishlistOnly {
		c.add("w.reward_id IS NOT NULL")
	}

	from := `FROM rewards r LEFT JOIN wishlist_items w ON w.reward_id = r.id AND w.student_id = ` + wishlistOf

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+from+` `+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := c.arg(clampLimit(filter.Limit))
	offset := c.arg(filter.Offset)
	query := fmt.Sprintf(`SELECT %s, w.reward_id IS NOT NULL %s %s ORDER BY r.points_cost, r.title LIMIT %s OFFSET %s`,
		rewardColumns, from, c.where(), limit, offset)

	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rewards := make([]domain.Reward, 0)
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, 0, err
		}
		rewards = append(rewards, *reward)
	}
	return rewards, total, rows.Err()
}

func (r *rewardRepository) Create(ctx context.Context, reward *domain.Reward) (*domain.Reward, error) {
	if reward == nil {
		return nil, domain.ErrInvalidPayload
	}
	if reward.ID == "" {
		reward.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO rewards (id, title, description, category_id, points_cost, limited_quantity, quantity, created_by,
		creator_role, school_id, image, redemption_instructions, restrictions, is_visible, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, TRUE)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		reward.ID,
		reward.Title,
		reward.Description,
		nullString(reward.CategoryID),
		reward.PointsCost,
		reward.LimitedQuantity,
		reward.Quantity,
		reward.CreatedBy,
		string(reward.CreatorRole),
		reward.SchoolID,
		reward.Image,
		reward.RedemptionInstructions,
		reward.Restrictions,
		reward.IsVisible,
	).Scan(&reward.CreatedAt, &reward.UpdatedAt); err != nil {
		return nil, err
	}
	reward.IsActive = true
	return reward, nil
}

func (r *rewardRepository) Update(ctx context.Context, reward *domain.Reward) error {
	if reward == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE rewards
	SET title = $2,
		description = $3,
		category_id = $4,
		points_cost = $5,
		limited_quantity = $6,
		quantity = $7,
		image = $8,
		redemption_instructions = $9,
		restrictions = $10,
		updated_at = NOW()
	WHERE id = $1 AND is_active
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		reward.ID,
		reward.Title,
		reward.Description,
		nullString(reward.CategoryID),
		reward.PointsCost,
		reward.LimitedQuantity,
		reward.Quantity,
		reward.Image,
		reward.RedemptionInstructions,
		reward.Restrictions,
	).Scan(&reward.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRewardNotFound
		}
		return err
	}
	return nil
}

func (r *rewardRepository) SoftDelete(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE rewards SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, id)
}

func (r *rewardRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	return r.exec(ctx, `UPDATE rewards SET is_visible = $2, updated_at = NOW() WHERE id = $1 AND is_active`, id, visible)
}

func (r *rewardRepository) AddToWishlist(ctx context.Context, studentID, rewardID string) error {
	const query = `
	INSERT INTO wishlist_items (student_id, reward_id)
	SELECT $1, id FROM rewards WHERE id = $2 AND is_active
	ON CONFLICT (student_id, reward_id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, studentID, rewardID); err != nil {
		return err
	}
	return nil
}

func (r *rewardRepository) RemoveFromWishlist(ctx context.Context, studentID, rewardID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE student_id = $1 AND reward_id = $2`, studentID, rewardID)
	return err
}

func (r *rewardRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRewardNotFound
	}
	return nil
}

func scanReward(row rowScanner) (*domain.Reward, error) {
	var (
		reward   domain.Reward
		category *string
		role     string
	)
	if err := row.Scan(
		&reward.ID,
		&reward.Title,
		&reward.Description,
		&category,
		&reward.PointsCost,
		&reward.LimitedQuantity,
		&reward.Quantity,
		&reward.CreatedBy,
		&role,
		&reward.SchoolID,
		&reward.Image,
		&reward.RedemptionInstructions,
		&reward.Restrictions,
		&reward.IsVisible,
		&reward.IsActive,
		&reward.CreatedAt,
		&reward.UpdatedAt,
		&reward.InWishlist,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRewardNotFound
		}
		return nil, err
	}
	reward.CategoryID = deref(category)
	reward.CreatorRole = domain.Role(role)
	return &reward, nil
}
