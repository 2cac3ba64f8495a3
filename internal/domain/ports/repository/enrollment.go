package repository

import (
	"context"
	"time"

	"class-access/internal/domain/model"
)

// EnrollmentRepository is the port for the Enrollment Store.
type EnrollmentRepository interface {
	Exists(ctx context.Context, tx Tx, userID, classID string) (bool, error)
	// Create inserts the (userID, classID) enrollment. A duplicate pair yields
	// domain.ErrConflict and leaves any surrounding transaction usable.
	Create(ctx context.Context, tx Tx, userID, classID string, at time.Time) (*model.Enrollment, error)
	FindByUserAndClass(ctx context.Context, tx Tx, userID, classID string) (*model.Enrollment, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Enrollment, error)
	CountByClass(ctx context.Context, tx Tx, classID string) (int, error)
}
