package usecase

import (
	"context"

	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/adapter"
	"class-access/internal/infra/logging"

	"github.com/rs/zerolog"
)

// publishGranted runs after commit. The publisher only enqueues, so this never
// waits on the broker. Failures are logged and never surface to the caller.
func publishGranted(ctx context.Context, pub adapter.AccessEventPublisher, logger *zerolog.Logger, enr *model.Enrollment, src model.AccessSource) {
	if pub == nil || enr == nil {
		return
	}
	ev := model.AccessGrantedEvent{
		UserID:       enr.UserID,
		ClassID:      enr.ClassID,
		EnrollmentID: enr.ID,
		Source:       src,
		At:           enr.EnrolledAt,
	}
	if err := pub.PublishAccessGranted(ctx, ev); err != nil {
		logging.With(ctx, logger).Warn().Err(err).
			Str("class_id", enr.ClassID).
			Str("source", string(src)).
			Msg("access event not published")
	}
}
