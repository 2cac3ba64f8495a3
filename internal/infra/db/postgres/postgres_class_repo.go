package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"class-access/internal/domain"
	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/repository"
)

var _ repository.ClassRepository = (*classRepo)(nil)

type classRepo struct {
	pool *pgxpool.Pool
}

func NewClassRepo(pool *pgxpool.Pool) repository.ClassRepository {
	return &classRepo{pool: pool}
}

func (r *classRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Class, error) {
	const q = `SELECT id, title, is_free, price FROM classes WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var c model.Class
	if err := row.Scan(&c.ID, &c.Title, &c.IsFree, &c.Price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

func (r *classRepo) Save(ctx context.Context, tx repository.Tx, c *model.Class) error {
	if c.ID == "" || c.Title == "" || c.Price < 0 {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO classes (id, title, is_free, price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  is_free = EXCLUDED.is_free,
  price = EXCLUDED.price;`
	if _, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Title, c.IsFree, c.Price); err != nil {
		return fmt.Errorf("save class: %w", err)
	}
	return nil
}
