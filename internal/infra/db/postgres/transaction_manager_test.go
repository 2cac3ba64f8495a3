//go:build !integration

package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgconn"

	"class-access/internal/domain"
)

func TestGetExecutor(t *testing.T) {
	t.Run("nil tx without a pool is an invalid argument", func(t *testing.T) {
		if _, err := getExecutor(nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("unknown tx type is rejected", func(t *testing.T) {
		if _, err := getExecutor(nil, "not-a-tx"); !errors.Is(err, domain.ErrInvalidExecContext) {
			t.Errorf("expected ErrInvalidExecContext, got %v", err)
		}
	})
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("23505 should be a unique violation")
	}
	wrapped := errors.Join(errors.New("context"), &pgconn.PgError{Code: "23505"})
	if !isUniqueViolation(wrapped) {
		t.Error("wrapped 23505 should be detected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Error("plain error is not a unique violation")
	}
}
