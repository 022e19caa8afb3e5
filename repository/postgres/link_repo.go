package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

var (
	errAlreadyLinked = domain.Invalid("already linked with this parent")
	errNotLinked     = domain.Invalid("parent is not linked to this student")
	errNoSchool      = domain.Invalid("student is not linked to any school")
)

type linkRepository struct {
	pool *pgxpool.Pool
}

// NewLinkRepository returns a LinkRepository that writes both sides of a link in one transaction.
func NewLinkRepository(pool *pgxpool.Pool) repository.LinkRepository {
	return &linkRepository{pool: pool}
}

func (r *linkRepository) LinkParent(ctx context.Context, studentID, parentID string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		linked, err := lockStudentParent(ctx, tx, studentID, parentID)
		if err != nil {
			return err
		}
		if linked {
			return errAlreadyLinked
		}
		return linkParent(ctx, tx, studentID, parentID)
	})
}

func (r *linkRepository) UnlinkParent(ctx context.Context, studentID, parentID string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		linked, err := lockStudentParent(ctx, tx, studentID, parentID)
		if err != nil {
			return err
		}
		if !linked {
			return errNotLinked
		}

		if _, err := tx.Exec(ctx,
			`UPDATE students SET parent_ids = array_remove(parent_ids, $2), updated_at = NOW() WHERE id = $1`,
			studentID, parentID,
		); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE parents SET child_ids = array_remove(child_ids, $2), updated_at = NOW() WHERE id = $1`,
			parentID, studentID,
		)
		return err
	})
}

func (r *linkRepository) ApproveParentRequest(ctx context.Context, requestID, studentID, parentID string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE link_requests SET status = 'approved', updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
			requestID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrLinkRequestNotFound
		}

		if _, err := lockStudentParent(ctx, tx, studentID, parentID); err != nil {
			return err
		}
		return linkParent(ctx, tx, studentID, parentID)
	})
}

func (r *linkRepository) JoinClass(ctx context.Context, studentID string, class *domain.SchoolClass) error {
	if class == nil {
		return domain.ErrInvalidPayload
	}
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const student = `
		UPDATE students
		SET school_id = $2,
			teacher_ids = CASE
				WHEN $3 <> '' AND NOT ($3 = ANY(teacher_ids)) THEN array_append(teacher_ids, $3)
				ELSE teacher_ids
			END,
			updated_at = NOW()
		WHERE id = $1
		`
		tag, err := tx.Exec(ctx, student, studentID, class.SchoolID, class.TeacherID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrStudentNotFound
		}

		const roster = `
		UPDATE school_classes
		SET student_ids = array_append(student_ids, $2)
		WHERE id = $1 AND NOT ($2 = ANY(student_ids))
		`
		_, err = tx.Exec(ctx, roster, class.ID, studentID)
		return err
	})
}

func (r *linkRepository) LeaveSchool(ctx context.Context, studentID, schoolID string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var current *string
		err := tx.QueryRow(ctx, `SELECT school_id FROM students WHERE id = $1 FOR UPDATE`, studentID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrStudentNotFound
		}
		if err != nil {
			return err
		}
		if current == nil || *current != schoolID {
			return errNoSchool
		}

		if _, err := tx.Exec(ctx,
			`UPDATE school_classes SET student_ids = array_remove(student_ids, $1) WHERE school_id = $2 AND $1 = ANY(student_ids)`,
			studentID, schoolID,
		); err != nil {
			return err
		}

		// Teachers of other schools stay linked.
		const student = `
		UPDATE students
		SET teacher_ids = ARRAY(
				SELECT t FROM unnest(teacher_ids) AS t
				WHERE EXISTS (SELECT 1 FROM teachers WHERE id = t AND school_id <> $2)
			),
			school_id = NULL,
			updated_at = NOW()
		WHERE id = $1
		`
		_, err = tx.Exec(ctx, student, studentID, schoolID)
		return err
	})
}

// lockStudentParent locks both rows and reports whether the student already lists the parent.
func lockStudentParent(ctx context.Context, tx pgx.Tx, studentID, parentID string) (bool, error) {
	var linked bool
	err := tx.QueryRow(ctx,
		`SELECT $2 = ANY(parent_ids) FROM students WHERE id = $1 FOR UPDATE`,
		studentID, parentID,
	).Scan(&linked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, domain.ErrStudentNotFound
	}
	if err != nil {
		return false, err
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT TRUE FROM parents WHERE id = $1 FOR UPDATE`, parentID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrParentNotFound
		}
		return false, err
	}
	return linked, nil
}

func linkParent(ctx context.Context, tx pgx.Tx, studentID, parentID string) error {
	if _, err := tx.Exec(ctx,
		`UPDATE students SET parent_ids = array_append(parent_ids, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(parent_ids))`,
		studentID, parentID,
	); err != nil {
		return err
	}
	_, err := tx.Exec(ctx,
		`UPDATE parents SET child_ids = array_append(child_ids, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(child_ids))`,
		parentID, studentID,
	)
	return err
}
