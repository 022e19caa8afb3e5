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

const studentColumns = `id, user_id, grade, school_id, parent_ids, teacher_ids, points_account_id, level, badges,
	attendance_streak, created_at, updated_at`

type studentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository returns a Postgres-backed implementation of StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) repository.StudentRepository {
	return &studentRepository{pool: pool}
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	return scanStudent(r.pool.QueryRow(ctx, query, id))
}

func (r *studentRepository) GetByUserID(ctx context.Context, userID string) (*domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE user_id = $1`
	return scanStudent(r.pool.QueryRow(ctx, query, userID))
}

func (r *studentRepository) Create(ctx context.Context, student *domain.Student) (*domain.Student, error) {
	if student == nil {
		return nil, domain.ErrInvalidPayload
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO students (id, user_id, grade, school_id, points_account_id, level, attendance_streak)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (user_id) DO NOTHING
	RETURNING created_at, updated_at
	`

	var schoolID interface{}
	if student.SchoolID != nil && *student.SchoolID != "" {
		schoolID = *student.SchoolID
	}

	if err := r.pool.QueryRow(ctx, query,
		student.ID,
		student.UserID,
		student.Grade,
		schoolID,
		student.PointsAccountID,
		student.Level,
		student.AttendanceStreak,
	).Scan(&student.CreatedAt, &student.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileExists
		}
		return nil, err
	}

	student.ParentIDs = []string{}
	student.TeacherIDs = []string{}
	student.Badges = []string{}
	return student, nil
}

func (r *studentRepository) Update(ctx context.Context, student *domain.Student) error {
	if student == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE students
	SET grade = $2,
		level = $3,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query, student.ID, student.Grade, student.Level).Scan(&student.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrStudentNotFound
		}
		return err
	}
	return nil
}

func (r *studentRepository) SetPointsAccount(ctx context.Context, id, accountID string) error {
	const query = `UPDATE students SET points_account_id = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

func (r *studentRepository) Details(ctx context.Context, userID string) (*domain.StudentDetails, error) {
	student, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := &domain.StudentDetails{Student: *student}

	user, err := NewUserRepository(r.pool).GetByID(ctx, userID)
	switch {
	case err == nil:
		details.User = user
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	if details.Parents, err = personSummaries(ctx, r.pool, "parents", student.ParentIDs); err != nil {
		return nil, err
	}
	if details.Teachers, err = personSummaries(ctx, r.pool, "teachers", student.TeacherIDs); err != nil {
		return nil, err
	}

	if student.SchoolID != nil {
		school, err := NewSchoolRepository(r.pool).GetSchool(ctx, *student.SchoolID)
		switch {
		case err == nil:
			details.School = school
		case !errors.Is(err, domain.ErrSchoolNotFound):
			return nil, err
		}
	}

	return details, nil
}

func (r *studentRepository) Badges(ctx context.Context, ids []string) ([]domain.Badge, error) {
	badges := make([]domain.Badge, 0, len(ids))
	if len(ids) == 0 {
		return badges, nil
	}

	const query = `SELECT id, name, description, icon FROM badges WHERE id = ANY($1) ORDER BY name`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b domain.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func scanStudent(row rowScanner) (*domain.Student, error) {
	var s domain.Student
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Grade,
		&s.SchoolID,
		&s.ParentIDs,
		&s.TeacherIDs,
		&s.PointsAccountID,
		&s.Level,
		&s.Badges,
		&s.AttendanceStreak,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}
	return &s, nil
}
