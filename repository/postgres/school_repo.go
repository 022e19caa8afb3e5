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

const classColumns = `id, school_id, name, grade, teacher_id, student_ids, join_code, created_at`

type schoolRepository struct {
	pool *pgxpool.Pool
}

// NewSchoolRepository returns a Postgres-backed implementation of SchoolRepository.
func NewSchoolRepository(pool *pgxpool.Pool) repository.SchoolRepository {
	return &schoolRepository{pool: pool}
}

func (r *schoolRepository) CreateSchool(ctx context.Context, school *domain.School) (*domain.School, error) {
	if school == nil {
		return nil, domain.ErrInvalidPayload
	}
	if school.ID == "" {
		school.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO schools (id, name, address, admin_ids)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query, school.ID, school.Name, school.Address, nonNil(school.AdminIDs)).
		Scan(&school.CreatedAt); err != nil {
		return nil, err
	}
	return school, nil
}

func (r *schoolRepository) GetSchool(ctx context.Context, id string) (*domain.School, error) {
	const query = `SELECT id, name, address, admin_ids, created_at FROM schools WHERE id = $1`
	var s domain.School
	if err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Address, &s.AdminIDs, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSchoolNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateClass inserts the class and attaches it to its teacher in one transaction.
func (r *schoolRepository) CreateClass(ctx context.Context, class *domain.SchoolClass) (*domain.SchoolClass, error) {
	if class == nil {
		return nil, domain.ErrInvalidPayload
	}
	if class.ID == "" {
		class.ID = uuid.NewString()
	}

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insert = `
		INSERT INTO school_classes (id, school_id, name, grade, teacher_id, join_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
		`
		if err := tx.QueryRow(ctx, insert,
			class.ID,
			class.SchoolID,
			class.Name,
			class.Grade,
			class.TeacherID,
			class.JoinCode,
		).Scan(&class.CreatedAt); err != nil {
			return err
		}

		if class.TeacherID == "" {
			return nil
		}
		const attach = `
		UPDATE teachers
		SET class_ids = array_append(class_ids, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(class_ids))
		`
		_, err := tx.Exec(ctx, attach, class.TeacherID, class.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	class.StudentIDs = []string{}
	return class, nil
}

func (r *schoolRepository) GetClass(ctx context.Context, id string) (*domain.SchoolClass, error) {
	query := `SELECT ` + classColumns + ` FROM school_classes WHERE id = $1`
	return scanClass(r.pool.QueryRow(ctx, query, id))
}

func (r *schoolRepository) GetClassByJoinCode(ctx context.Context, code string) (*domain.SchoolClass, error) {
	query := `SELECT ` + classColumns + ` FROM school_classes WHERE join_code = $1`
	return scanClass(r.pool.QueryRow(ctx, query, code))
}

func (r *schoolRepository) ListClasses(ctx context.Context, ids []string) ([]domain.SchoolClass, error) {
	classes := make([]domain.SchoolClass, 0, len(ids))
	if len(ids) == 0 {
		return classes, nil
	}

	query := `SELECT ` + classColumns + ` FROM school_classes WHERE id = ANY($1) ORDER BY name`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *class)
	}
	return classes, rows.Err()
}

func scanClass(row rowScanner) (*domain.SchoolClass, error) {
	var c domain.SchoolClass
	if err := row.Scan(&c.ID, &c.SchoolID, &c.Name, &c.Grade, &c.TeacherID, &c.StudentIDs, &c.JoinCode, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClassNotFound
		}
		return nil, err
	}
	return &c, nil
}
