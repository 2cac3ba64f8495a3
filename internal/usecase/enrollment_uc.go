package usecase

import (
	"context"
	"errors"
	"time"

	"class-access/internal/domain"
	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/adapter"
	"class-access/internal/domain/ports/repository"
	"class-access/internal/infra/logging"
	"class-access/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ EnrollmentUseCase = (*enrollmentUC)(nil)

// EnrollmentUseCase grants access to free classes.
type EnrollmentUseCase interface {
	// EnrollFree is idempotent: a repeat call reports EnrollStatusAlreadyEnrolled.
	// It does not check pricing; callers route only free classes here.
	EnrollFree(ctx context.Context, userID, classID string) (*model.EnrollResult, error)
	ListMine(ctx context.Context, userID string) ([]*model.Enrollment, error)
}

type enrollmentUC struct {
	enrollments repository.EnrollmentRepository
	events      adapter.AccessEventPublisher
	log         *zerolog.Logger
	now         func() time.Time
}

// events may be nil.
func NewEnrollmentUseCase(enrollments repository.EnrollmentRepository, events adapter.AccessEventPublisher, logger *zerolog.Logger) *enrollmentUC {
	return &enrollmentUC{
		enrollments: enrollments,
		events:      events,
		log:         logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (u *enrollmentUC) EnrollFree(ctx context.Context, userID, classID string) (*model.EnrollResult, error) {
	defer logging.TraceDuration(u.log, "EnrollmentUC.EnrollFree")()
	log := logging.With(ctx, u.log)

	if userID == "" || classID == "" {
		return nil, domain.ErrInvalidArgument
	}

	// Single statement; the unique (user_id, class_id) constraint serializes duplicates.
	enr, err := u.enrollments.Create(ctx, repository.NoTX, userID, classID, u.now())
	if err == nil {
		metrics.IncEnrollment(string(model.EnrollStatusEnrolled))
		log.Info().Str("class_id", classID).Msg("enrolled in free class")
		publishGranted(ctx, u.events, u.log, enr, model.AccessSourceFreeEnrollment)
		return &model.EnrollResult{Status: model.EnrollStatusEnrolled, Enrollment: enr}, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		metrics.IncEnrollment("error")
		log.Error().Err(err).Str("class_id", classID).Msg("free enrollment failed")
		return nil, err
	}

	metrics.IncEnrollment(string(model.EnrollStatusAlreadyEnrolled))
	existing, err := u.enrollments.FindByUserAndClass(ctx, repository.NoTX, userID, classID)
	if err != nil {
		// The enrollment exists; failing to load it does not change the outcome.
		log.Warn().Err(err).Str("class_id", classID).Msg("could not load existing enrollment")
		existing = nil
	}
	return &model.EnrollResult{Status: model.EnrollStatusAlreadyEnrolled, Enrollment: existing}, nil
}

func (u *enrollmentUC) ListMine(ctx context.Context, userID string) ([]*model.Enrollment, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.enrollments.ListByUser(ctx, repository.NoTX, userID)
}
