package usecase

import (
	"context"
	"errors"

	"class-access/internal/domain"
	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/repository"
	"class-access/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	ClassStats(ctx context.Context, classID string) (*model.ClassStats, error)
}

type statsUC struct {
	classes     repository.ClassRepository
	codes       repository.AccessCodeRepository
	enrollments repository.EnrollmentRepository

	log *zerolog.Logger
}

func NewStatsUseCase(classes repository.ClassRepository, codes repository.AccessCodeRepository, enrollments repository.EnrollmentRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{classes: classes, codes: codes, enrollments: enrollments, log: logger}
}

func (s *statsUC) ClassStats(ctx context.Context, classID string) (*model.ClassStats, error) {
	if classID == "" {
		return nil, domain.ErrInvalidArgument
	}
	log := logging.With(ctx, s.log)

	if _, err := s.classes.FindByID(ctx, repository.NoTX, classID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Str("class_id", classID).Msg("stats: class lookup failed")
		}
		return nil, err
	}
	byState, err := s.codes.CountByState(ctx, repository.NoTX, classID)
	if err != nil {
		log.Error().Err(err).Str("class_id", classID).Msg("stats: count codes failed")
		return nil, err
	}
	n, err := s.enrollments.CountByClass(ctx, repository.NoTX, classID)
	if err != nil {
		log.Error().Err(err).Str("class_id", classID).Msg("stats: count enrollments failed")
		return nil, err
	}
	return &model.ClassStats{
		ClassID:     classID,
		CodesUnused: byState[model.CodeStateUnused],
		CodesUsed:   byState[model.CodeStateUsed],
		Enrollments: n,
	}, nil
}
