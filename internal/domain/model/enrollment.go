package model

import (
	"time"

	"class-access/internal/domain"

	"github.com/google/uuid"
)

// Enrollment is a durable grant of a user's access to one class.
// At most one exists per (UserID, ClassID).
type Enrollment struct {
	ID         string
	UserID     string
	ClassID    string
	EnrolledAt time.Time
}

func NewEnrollment(userID, classID string, at time.Time) (*Enrollment, error) {
	if userID == "" || classID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if at.IsZero() {
		at = time.Now()
	}
	return &Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		ClassID:    classID,
		EnrolledAt: at.UTC(),
	}, nil
}
