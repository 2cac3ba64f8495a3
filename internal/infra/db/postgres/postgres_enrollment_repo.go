package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"class-access/internal/domain"
	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/repository"
)

var _ repository.EnrollmentRepository = (*enrollmentRepo)(nil)

type enrollmentRepo struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRepo(pool *pgxpool.Pool) repository.EnrollmentRepository {
	return &enrollmentRepo{pool: pool}
}

func (r *enrollmentRepo) Exists(ctx context.Context, tx repository.Tx, userID, classID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND class_id = $2);`
	row, err := pickRow(ctx, r.pool, tx, q, userID, classID)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, fmt.Errorf("enrollment exists: %w", err)
	}
	return ok, nil
}

// Create inserts with ON CONFLICT DO NOTHING rather than letting the unique
// constraint raise: a raised 23505 would abort the surrounding transaction,
// and the redemption flow must be able to commit after a duplicate.
func (r *enrollmentRepo) Create(ctx context.Context, tx repository.Tx, userID, classID string, at time.Time) (*model.Enrollment, error) {
	e, err := model.NewEnrollment(userID, classID, at)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO enrollments (id, user_id, class_id, enrolled_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, class_id) DO NOTHING
RETURNING id, user_id, class_id, enrolled_at;`
	row, err := pickRow(ctx, r.pool, tx, q, e.ID, e.UserID, e.ClassID, e.EnrolledAt)
	if err != nil {
		return nil, err
	}
	var out model.Enrollment
	if err := row.Scan(&out.ID, &out.UserID, &out.ClassID, &out.EnrolledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	return &out, nil
}

func (r *enrollmentRepo) FindByUserAndClass(ctx context.Context, tx repository.Tx, userID, classID string) (*model.Enrollment, error) {
	const q = `
SELECT id, user_id, class_id, enrolled_at
  FROM enrollments
 WHERE user_id = $1 AND class_id = $2;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, classID)
	if err != nil {
		return nil, err
	}
	var e model.Enrollment
	if err := row.Scan(&e.ID, &e.UserID, &e.ClassID, &e.EnrolledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &e, nil
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Enrollment, error) {
	const q = `
SELECT id, user_id, class_id, enrolled_at
  FROM enrollments
 WHERE user_id = $1
 ORDER BY enrolled_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.UserID, &e.ClassID, &e.EnrolledAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *enrollmentRepo) CountByClass(ctx context.Context, tx repository.Tx, classID string) (int, error) {
	const q = `SELECT COUNT(*) FROM enrollments WHERE class_id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, classID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}
