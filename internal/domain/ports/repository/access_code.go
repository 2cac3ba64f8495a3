package repository

import (
	"context"
	"time"

	"class-access/internal/domain/model"
)

// AccessCodeRepository is the port for the Code Store.
type AccessCodeRepository interface {
	// Save inserts a new unused code. Returns domain.ErrAlreadyExists if the token is taken.
	Save(ctx context.Context, tx Tx, code *model.AccessCode) error
	// FindByCode returns the code in whatever state it is in, or domain.ErrNotFound.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.AccessCode, error)
	// MarkUsed is a compare-and-set: it flips an unused code to used by userID
	// and returns the updated record, or domain.ErrConflict if no row changed.
	MarkUsed(ctx context.Context, tx Tx, code, userID string, at time.Time) (*model.AccessCode, error)
	// ListByClass returns all codes issued for a class, newest first.
	ListByClass(ctx context.Context, tx Tx, classID string) ([]*model.AccessCode, error)
	CountByState(ctx context.Context, tx Tx, classID string) (map[model.CodeState]int, error)
}
