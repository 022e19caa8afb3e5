package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

const categoryColumns = `id, name, description, icon, color, parent_category, created_by, creator_role, type,
	default_point_value, school_id, subject, grade_level, is_system, visibility, display_order, is_active,
	created_at, updated_at`

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a Postgres-backed implementation of CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) repository.CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.TaskCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM task_categories WHERE id = $1`
	return scanCategory(r.pool.QueryRow(ctx, query, id))
}

func (r *categoryRepository) List(ctx context.Context, filter repository.CategoryFilter) ([]domain.TaskCategory, error) {
	var c conditions
	if filter.Active != nil {
		c.add("is_active = " + c.arg(*filter.Active))
	}
	if filter.Type != "" {
		c.add("type = " + c.arg(filter.Type))
	}
	if filter.SchoolID != "" {
		c.add("school_id = " + c.arg(filter.SchoolID))
	}
	if filter.ParentID != "" {
		c.add("parent_category = " + c.arg(filter.ParentID))
	}

	// Visibility and ownership widen the result set together.
	var scope []string
	if filter.CreatedBy != "" {
		scope = append(scope, "created_by = "+c.arg(filter.CreatedBy))
	}
	if len(filter.Visibility) > 0 {
		values := make([]string, 0, len(filter.Visibility))
		for _, v := range filter.Visibility {
			values = append(values, string(v))
		}
		scope = append(scope, "visibility = ANY("+c.arg(values)+")", "is_system")
	}
	if len(scope) > 0 {
		c.add("(" + strings.Join(scope, " OR ") + ")")
	}

	query := `SELECT ` + categoryColumns + ` FROM task_categories ` + c.where() + ` ORDER BY display_order, name`
	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.TaskCategory, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.TaskCategory) (*domain.TaskCategory, error) {
	if category == nil {
		return nil, domain.ErrInvalidPayload
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO task_categories (id, name, description, icon, color, parent_category, created_by, creator_role,
		type, default_point_value, school_id, subject, grade_level, is_system, visibility, display_order, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.Icon,
		category.Color,
		nullString(category.ParentCategory),
		category.CreatedBy,
		category.CreatorRole,
		string(category.Type),
		category.DefaultPointValue,
		category.SchoolID,
		category.Subject,
		category.GradeLevel,
		category.IsSystem,
		string(category.Visibility),
		category.DisplayOrder,
		category.IsActive,
	).Scan(&category.CreatedAt, &category.UpdatedAt); err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.TaskCategory) error {
	if category == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE task_categories
	SET name = $2,
		description = $3,
		icon = $4,
		color = $5,
		parent_category = $6,
		type = $7,
		default_point_value = $8,
		subject = $9,
		grade_level = $10,
		visibility = $11,
		display_order = $12,
		is_active = $13,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.Icon,
		category.Color,
		nullString(category.ParentCategory),
		string(category.Type),
		category.DefaultPointValue,
		category.Subject,
		category.GradeLevel,
		string(category.Visibility),
		category.DisplayOrder,
		category.IsActive,
	).Scan(&category.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (r *categoryRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE task_categories SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) EnsureSystem(ctx context.Context, categories []domain.TaskCategory) ([]domain.TaskCategory, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const query = `
	INSERT INTO task_categories (id, name, description, icon, color, created_by, creator_role, type,
		default_point_value, is_system, visibility, display_order, is_active)
	SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, 'public', $10, TRUE
	WHERE NOT EXISTS (SELECT 1 FROM task_categories WHERE is_system AND name = $2)
	RETURNING created_at, updated_at
	`

	created := make([]domain.TaskCategory, 0, len(categories))
	for _, category := range categories {
		category.ID = uuid.NewString()
		err := tx.QueryRow(ctx, query,
			category.ID,
			category.Name,
			category.Description,
			category.Icon,
			category.Color,
			category.CreatedBy,
			category.CreatorRole,
			string(category.Type),
			category.DefaultPointValue,
			category.DisplayOrder,
		).Scan(&category.CreatedAt, &category.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		category.IsSystem = true
		category.IsActive = true
		category.Visibility = domain.VisibilityPublic
		created = append(created, category)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func scanCategory(row rowScanner) (*domain.TaskCategory, error) {
	var (
		c          domain.TaskCategory
		parent     *string
		kind       string
		visibility string
	)
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Icon,
		&c.Color,
		&parent,
		&c.CreatedBy,
		&c.CreatorRole,
		&kind,
		&c.DefaultPointValue,
		&c.SchoolID,
		&c.Subject,
		&c.GradeLevel,
		&c.IsSystem,
		&visibility,
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
	c.ParentCategory = deref(parent)
	c.Type = domain.CategoryType(kind)
	c.Visibility = domain.CategoryVisibility(visibility)
	return &c, nil
}
