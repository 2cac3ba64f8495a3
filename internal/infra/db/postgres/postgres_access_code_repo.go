package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"class-access/internal/domain"
	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.AccessCodeRepository = (*accessCodeRepo)(nil)

type accessCodeRepo struct {
	pool *pgxpool.Pool
}

func NewAccessCodeRepo(pool *pgxpool.Pool) repository.AccessCodeRepository {
	return &accessCodeRepo{pool: pool}
}

const accessCodeCols = `id, code, class_id, price, state, used_by, used_at, batch_id, created_at`

// Save inserts a new, unused code. Codes are never updated through Save:
// the only state change goes through MarkUsed.
func (r *accessCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.AccessCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	if code.State == "" {
		code.State = model.CodeStateUnused
	}

	// DO NOTHING keeps an enclosing transaction usable when a token collides.
	const q = `
INSERT INTO access_codes (id, code, class_id, price, state, used_by, used_at, batch_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
ON CONFLICT (code) DO NOTHING;
`
	tag, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, code.ClassID, code.Price, string(code.State), code.UsedBy, code.UsedAt, code.BatchID, code.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save access code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// FindByCode returns the code regardless of its state.
func (r *accessCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error) {
	q := `SELECT ` + accessCodeCols + ` FROM access_codes WHERE code = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	ac, err := scanAccessCode(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return ac, nil
}

// MarkUsed is the compare-and-set for the unused -> used transition.
// Concurrent callers serialize on the row lock; the losers re-evaluate the
// WHERE clause after the winner commits and get no row back.
func (r *accessCodeRepo) MarkUsed(ctx context.Context, tx repository.Tx, code, userID string, at time.Time) (*model.AccessCode, error) {
	q := `
UPDATE access_codes
   SET state = 'used', used_by = $2, used_at = $3
 WHERE code = $1 AND state = 'unused'
RETURNING ` + accessCodeCols + `;`
	row, err := pickRow(ctx, r.pool, tx, q, code, userID, at.UTC())
	if err != nil {
		return nil, err
	}
	ac, err := scanAccessCode(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("mark access code used: %w", err)
	}
	return ac, nil
}

func (r *accessCodeRepo) ListByClass(ctx context.Context, tx repository.Tx, classID string) ([]*model.AccessCode, error) {
	q := `SELECT ` + accessCodeCols + ` FROM access_codes WHERE class_id = $1 ORDER BY created_at DESC, code;`
	rows, err := queryRows(ctx, r.pool, tx, q, classID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.AccessCode
	for rows.Next() {
		ac, err := scanAccessCode(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *accessCodeRepo) CountByState(ctx context.Context, tx repository.Tx, classID string) (map[model.CodeState]int, error) {
	const q = `SELECT state, COUNT(*) FROM access_codes WHERE class_id = $1 GROUP BY state;`
	rows, err := queryRows(ctx, r.pool, tx, q, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[model.CodeState]int{model.CodeStateUnused: 0, model.CodeStateUsed: 0}
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[model.CodeState(state)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanAccessCode(row pgx.Row) (*model.AccessCode, error) {
	var (
		ac      model.AccessCode
		state   string
		batchID *string
	)
	if err := row.Scan(
		&ac.ID, &ac.Code, &ac.ClassID, &ac.Price, &state, &ac.UsedBy, &ac.UsedAt, &batchID, &ac.CreatedAt,
	); err != nil {
		return nil, err
	}
	ac.State = model.CodeState(state)
	if batchID != nil {
		ac.BatchID = *batchID
	}
	return &ac, nil
}
