package repository

import (
	"context"

	"class-access/internal/domain/model"
)

// ClassRepository is the read-model port onto the class catalogue.
type ClassRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Class, error)
	// Save upserts a class. Only seeding uses it; catalogue CRUD lives elsewhere.
	Save(ctx context.Context, tx Tx, class *model.Class) error
}
