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

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RedemptionUseCase consumes single-use access codes.
type RedemptionUseCase interface {
	// Redeem consumes code on behalf of userID and grants access to its class.
	// User errors are domain.ErrInvalidCode and domain.ErrCodeAlreadyUsed.
	// Repeating a successful call returns RedeemStatusAlreadyRedeemedBySelf.
	Redeem(ctx context.Context, userID, code string) (*model.RedeemResult, error)
}

type redemptionUC struct {
	codes       repository.AccessCodeRepository
	enrollments repository.EnrollmentRepository
	tm          repository.TransactionManager
	events      adapter.AccessEventPublisher
	log         *zerolog.Logger
	now         func() time.Time
	dev         bool
}

func NewRedemptionUseCase(
	codes repository.AccessCodeRepository,
	enrollments repository.EnrollmentRepository,
	tm repository.TransactionManager,
	events adapter.AccessEventPublisher,
	logger *zerolog.Logger,
	dev bool,
) *redemptionUC {
	return &redemptionUC{
		codes:       codes,
		enrollments: enrollments,
		tm:          tm,
		events:      events,
		log:         logger,
		now:         func() time.Time { return time.Now().UTC() },
		dev:         dev,
	}
}

func (u *redemptionUC) Redeem(ctx context.Context, userID, code string) (*model.RedeemResult, error) {
	defer logging.TraceDuration(u.log, "RedemptionUC.Redeem")()
	log := logging.With(ctx, u.log)
	start := time.Now()

	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if code == "" {
		metrics.IncRedemption("invalid_code")
		return nil, domain.ErrInvalidCode
	}

	var res *model.RedeemResult
	// READ COMMITTED: after a lost CAS the re-read sees the winner's committed row.
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		ac, err := u.codes.FindByCode(ctx, tx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidCode
			}
			return err
		}
		res, err = u.settle(ctx, tx, userID, ac, true)
		return err
	})
	metrics.ObserveRedeemLatency(float64(time.Since(start).Microseconds()) / 1000)

	redacted := logging.Redact(code, u.dev)
	switch {
	case err == nil:
		metrics.IncRedemption(string(res.Status))
		log.Info().
			Str("code", redacted).
			Str("class_id", res.Code.ClassID).
			Str("status", string(res.Status)).
			Msg("access code redeemed")
		if res.Status == model.RedeemStatusRedeemed {
			publishGranted(ctx, u.events, u.log, res.Enrollment, model.AccessSourceRedemption)
		}
		return res, nil
	case errors.Is(err, domain.ErrInvalidCode):
		metrics.IncRedemption("invalid_code")
		log.Debug().Str("code", redacted).Msg("redeem rejected: unknown code")
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		metrics.IncRedemption("code_already_used")
		log.Debug().Str("code", redacted).Msg("redeem rejected: code used by another user")
	default:
		metrics.IncRedemption("error")
		log.Error().Err(err).Str("code", redacted).Msg("redeem failed")
	}
	return nil, err
}

// settle applies the redemption rules to a freshly read code inside tx.
// allowRetry bounds the re-read after a lost compare-and-set to one attempt.
func (u *redemptionUC) settle(ctx context.Context, tx repository.Tx, userID string, ac *model.AccessCode, allowRetry bool) (*model.RedeemResult, error) {
	now := u.now()

	if ac.IsUsed() {
		if !ac.UsedByUser(userID) {
			return nil, domain.ErrCodeAlreadyUsed
		}
		// Same user again: a retry, or a request cancelled after the code flipped.
		enr, err := u.ensureEnrollment(ctx, tx, userID, ac.ClassID, now)
		if err != nil {
			return nil, err
		}
		return &model.RedeemResult{Status: model.RedeemStatusAlreadyRedeemedBySelf, Code: ac, Enrollment: enr}, nil
	}

	used, err := u.codes.MarkUsed(ctx, tx, ac.Code, userID, now)
	if err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		if !allowRetry {
			// Lost twice in a row; let the caller retry the whole request.
			return nil, domain.ErrConflict
		}
		fresh, err := u.codes.FindByCode(ctx, tx, ac.Code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrInvalidCode
			}
			return nil, err
		}
		return u.settle(ctx, tx, userID, fresh, false)
	}

	enr, err := u.enrollments.Create(ctx, tx, userID, used.ClassID, now)
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		// Returning the error rolls back MarkUsed with the transaction.
		return nil, err
	}
	// On conflict the user was already enrolled by another path; the code is still consumed.
	return &model.RedeemResult{Status: model.RedeemStatusRedeemed, Code: used, Enrollment: enr}, nil
}

func (u *redemptionUC) ensureEnrollment(ctx context.Context, tx repository.Tx, userID, classID string, now time.Time) (*model.Enrollment, error) {
	enr, err := u.enrollments.Create(ctx, tx, userID, classID, now)
	if err == nil {
		return enr, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return nil, err
	}
	return u.enrollments.FindByUserAndClass(ctx, tx, userID, classID)
}
