package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"class-access/internal/domain"
	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/repository"
	"class-access/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ CodeUseCase = (*codeUC)(nil)

const maxCodeCollisions = 3

// CodeUseCase issues and lists access codes for a class (admin only).
type CodeUseCase interface {
	// Issue creates count unused codes for classID under a fresh batch id.
	// The batch is all-or-nothing.
	Issue(ctx context.Context, classID string, count int, price int64) (string, []*model.AccessCode, error)
	List(ctx context.Context, classID string) ([]*model.AccessCode, error)
}

type codeUC struct {
	codes    repository.AccessCodeRepository
	classes  repository.ClassRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
	maxBatch int
	gen      func() (string, error)
}

func NewCodeUseCase(
	codes repository.AccessCodeRepository,
	classes repository.ClassRepository,
	tm repository.TransactionManager,
	maxBatch int,
	logger *zerolog.Logger,
) *codeUC {
	return &codeUC{
		codes:    codes,
		classes:  classes,
		tm:       tm,
		log:      logger,
		maxBatch: maxBatch,
		gen:      generateAccessCode,
	}
}

func (u *codeUC) Issue(ctx context.Context, classID string, count int, price int64) (string, []*model.AccessCode, error) {
	defer logging.TraceDuration(u.log, "CodeUC.Issue")()

	if classID == "" || count <= 0 || price < 0 {
		return "", nil, domain.ErrInvalidArgument
	}
	if u.maxBatch > 0 && count > u.maxBatch {
		return "", nil, fmt.Errorf("%w: batch of %d exceeds limit %d", domain.ErrInvalidArgument, count, u.maxBatch)
	}
	if _, err := u.classes.FindByID(ctx, repository.NoTX, classID); err != nil {
		return "", nil, err
	}

	batchID := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	out := make([]*model.AccessCode, 0, count)

	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		out = out[:0]
		for i := 0; i < count; i++ {
			ac, err := u.issueOne(ctx, tx, classID, price, batchID)
			if err != nil {
				return err
			}
			out = append(out, ac)
		}
		return nil
	})
	if err != nil {
		logging.With(ctx, u.log).Error().Err(err).Str("class_id", classID).Int("count", count).Msg("issue codes failed")
		return "", nil, err
	}

	logging.With(ctx, u.log).Info().
		Str("class_id", classID).
		Str("batch_id", batchID).
		Int("count", len(out)).
		Msg("access codes issued")
	return batchID, out, nil
}

func (u *codeUC) issueOne(ctx context.Context, tx repository.Tx, classID string, price int64, batchID string) (*model.AccessCode, error) {
	for attempt := 0; attempt < maxCodeCollisions; attempt++ {
		token, err := u.gen()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		ac, err := model.NewAccessCode("", token, classID, price, batchID)
		if err != nil {
			return nil, err
		}
		err = u.codes.Save(ctx, tx, ac)
		if err == nil {
			return ac, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: could not generate a unique code after %d attempts", domain.ErrConflict, maxCodeCollisions)
}

func (u *codeUC) List(ctx context.Context, classID string) ([]*model.AccessCode, error) {
	if classID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.codes.ListByClass(ctx, repository.NoTX, classID)
}
