package usecase

import (
	"context"

	"class-access/internal/domain"
	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/repository"
	"class-access/internal/infra/logging"
	"class-access/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ AccessUseCase = (*accessUC)(nil)

// AccessUseCase decides whether a user may view a class. It never writes.
type AccessUseCase interface {
	HasAccess(ctx context.Context, userID, classID string, isAdmin bool) (bool, error)
	// Class exposes the class read-model so callers can route free vs paid.
	Class(ctx context.Context, classID string) (*model.Class, error)
}

type accessUC struct {
	classes     repository.ClassRepository
	enrollments repository.EnrollmentRepository
	log         *zerolog.Logger
}

func NewAccessUseCase(classes repository.ClassRepository, enrollments repository.EnrollmentRepository, logger *zerolog.Logger) *accessUC {
	return &accessUC{classes: classes, enrollments: enrollments, log: logger}
}

// HasAccess grants access to admins, to anyone for a free class, and to
// enrolled users otherwise. An unknown class is domain.ErrNotFound.
// Enrollment is read straight from the store so a completed redemption or
// enrollment is visible to the very next check.
func (u *accessUC) HasAccess(ctx context.Context, userID, classID string, isAdmin bool) (bool, error) {
	defer logging.TraceDuration(u.log, "AccessUC.HasAccess")()

	if classID == "" {
		return false, domain.ErrInvalidArgument
	}
	if isAdmin {
		metrics.IncAccessCheck(true, "admin")
		return true, nil
	}

	class, err := u.classes.FindByID(ctx, repository.NoTX, classID)
	if err != nil {
		metrics.IncAccessCheck(false, "error")
		return false, err
	}
	if class.IsFree {
		metrics.IncAccessCheck(true, "free")
		return true, nil
	}
	if userID == "" {
		metrics.IncAccessCheck(false, "none")
		return false, nil
	}

	ok, err := u.enrollments.Exists(ctx, repository.NoTX, userID, classID)
	if err != nil {
		metrics.IncAccessCheck(false, "error")
		logging.With(ctx, u.log).Error().Err(err).Str("class_id", classID).Msg("enrollment lookup failed")
		return false, err
	}
	if ok {
		metrics.IncAccessCheck(true, "enrolled")
		return true, nil
	}
	metrics.IncAccessCheck(false, "none")
	return false, nil
}

func (u *accessUC) Class(ctx context.Context, classID string) (*model.Class, error) {
	if classID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.classes.FindByID(ctx, repository.NoTX, classID)
}
