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

const redemptionColumns = `d.id, d.reward_id, r.title, d.student_id, d.points_spent, d.status, d.reviewed_by,
	d.reviewer_role, d.feedback, d.reviewed_at, d.created_at, d.updated_at`

type redemptionRepository struct {
	pool *pgxpool.Pool
}

// NewRedemptionRepository returns a Postgres-backed implementation of RedemptionRepository.
func NewRedemptionRepository(pool *pgxpool.Pool) repository.RedemptionRepository {
	return &redemptionRepository{pool: pool}
}

func (r *redemptionRepository) GetByID(ctx context.Context, id string) (*domain.Redemption, error) {
	query := `SELECT ` + redemptionColumns + ` FROM redemptions d JOIN rewards r ON r.id = d.reward_id WHERE d.id = $1`
	return scanRedemption(r.pool.QueryRow(ctx, query, id))
}

func (r *redemptionRepository) List(ctx context.Context, filter repository.RedemptionFilter) ([]domain.Redemption, int, error) {
	var c conditions
	if filter.StudentID != "" {
		c.add("d.student_id = " + c.arg(filter.StudentID))
	}
	if filter.RewardOwner != "" {
		c.add("r.created_by = " + c.arg(filter.RewardOwner))
	}
	if filter.Status != "" {
		c.add("d.status = " + c.arg(filter.Status))
	}

	const from = `FROM redemptions d JOIN rewards r ON r.id = d.reward_id`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+from+` `+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := c.arg(clampLimit(filter.Limit))
	offset := c.arg(filter.Offset)
	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY d.created_at DESC LIMIT %s OFFSET %s`,
		redemptionColumns, from, c.where(), limit, offset)

	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	redemptions := make([]domain.Redemption, 0)
	for rows.Next() {
		redemption, err := scanRedemption(rows)
		if err != nil {
			return nil, 0, err
		}
		redemptions = append(redemptions, *redemption)
	}
	return redemptions, total, rows.Err()
}

func (r *redemptionRepository) Reserve(ctx context.Context, redemption *domain.Redemption) (*domain.Redemption, error) {
	if redemption == nil {
		return nil, domain.ErrInvalidPayload
	}
	if redemption.ID == "" {
		redemption.ID = uuid.NewString()
	}
	redemption.Status = domain.RedemptionPending

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const take = `
		UPDATE rewards
		SET quantity = CASE WHEN limited_quantity THEN quantity - 1 ELSE quantity END,
			updated_at = NOW()
		WHERE id = $1 AND is_active AND is_visible AND (NOT limited_quantity OR quantity > 0)
		RETURNING title
		`
		if err := tx.QueryRow(ctx, take, redemption.RewardID).Scan(&redemption.RewardTitle); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRewardUnavailable
			}
			return err
		}

		const insert = `
		INSERT INTO redemptions (id, reward_id, student_id, points_spent, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
		`
		return tx.QueryRow(ctx, insert,
			redemption.ID,
			redemption.RewardID,
			redemption.StudentID,
			redemption.PointsSpent,
			string(redemption.Status),
		).Scan(&redemption.CreatedAt, &redemption.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

func (r *redemptionRepository) Resolve(ctx context.Context, redemption *domain.Redemption, restock bool) error {
	if redemption == nil {
		return domain.ErrInvalidPayload
	}

	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const resolve = `
		UPDATE redemptions
		SET status = $2,
			reviewed_by = $3,
			reviewer_role = $4,
			feedback = $5,
			reviewed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING reviewed_at, updated_at
		`
		if err := tx.QueryRow(ctx, resolve,
			redemption.ID,
			string(redemption.Status),
			redemption.ReviewedBy,
			string(redemption.ReviewerRole),
			redemption.Feedback,
		).Scan(&redemption.ReviewedAt, &redemption.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotPending
			}
			return err
		}

		if !restock {
			return nil
		}
		_, err := tx.Exec(ctx,
			`UPDATE rewards SET quantity = quantity + 1, updated_at = NOW() WHERE id = $1 AND limited_quantity`,
			redemption.RewardID,
		)
		return err
	})
}

func scanRedemption(row rowScanner) (*domain.Redemption, error) {
	var (
		d      domain.Redemption
		status string
		role   string
	)
	if err := row.Scan(
		&d.ID,
		&d.RewardID,
		&d.RewardTitle,
		&d.StudentID,
		&d.PointsSpent,
		&status,
		&d.ReviewedBy,
		&role,
		&d.Feedback,
		&d.ReviewedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRedemptionNotFound
		}
		return nil, err
	}
	d.Status = domain.RedemptionStatus(status)
	d.ReviewerRole = domain.Role(role)
	return &d, nil
}
