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

const teacherColumns = `id, user_id, school_id, class_ids, subjects_taught, created_at, updated_at`

type teacherRepository struct {
	pool *pgxpool.Pool
}

// NewTeacherRepository returns a Postgres-backed implementation of TeacherRepository.
func NewTeacherRepository(pool *pgxpool.Pool) repository.TeacherRepository {
	return &teacherRepository{pool: pool}
}

func (r *teacherRepository) GetByID(ctx context.Context, id string) (*domain.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE id = $1`
	return scanTeacher(r.pool.QueryRow(ctx, query, id))
}

func (r *teacherRepository) GetByUserID(ctx context.Context, userID string) (*domain.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE user_id = $1`
	return scanTeacher(r.pool.QueryRow(ctx, query, userID))
}

func (r *teacherRepository) Create(ctx context.Context, teacher *domain.Teacher) (*domain.Teacher, error) {
	if teacher == nil {
		return nil, domain.ErrInvalidPayload
	}
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO teachers (id, user_id, school_id, subjects_taught)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id) DO NOTHING
	RETURNING created_at, updated_at
	`
	teacher.SubjectsTaught = nonNil(teacher.SubjectsTaught)
	if err := r.pool.QueryRow(ctx, query, teacher.ID, teacher.UserID, teacher.SchoolID, teacher.SubjectsTaught).
		Scan(&teacher.CreatedAt, &teacher.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileExists
		}
		return nil, err
	}
	teacher.ClassIDs = []string{}
	return teacher, nil
}

func (r *teacherRepository) UpdateSubjects(ctx context.Context, id string, subjects []string) error {
	const query = `UPDATE teachers SET subjects_taught = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, nonNil(subjects))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTeacherNotFound
	}
	return nil
}

func scanTeacher(row rowScanner) (*domain.Teacher, error) {
	var t domain.Teacher
	if err := row.Scan(&t.ID, &t.UserID, &t.SchoolID, &t.ClassIDs, &t.SubjectsTaught, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeacherNotFound
		}
		return nil, err
	}
	return &t, nil
}
