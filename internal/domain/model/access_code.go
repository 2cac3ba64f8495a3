package model

import (
	"time"

	"class-access/internal/domain"

	"github.com/google/uuid"
)

type CodeState string

const (
	CodeStateUnused CodeState = "unused"
	CodeStateUsed   CodeState = "used"
)

// AccessCode is a single-use token that grants enrollment in one priced class.
// State only ever moves from unused to used; UsedBy and UsedAt are set together.
type AccessCode struct {
	ID        string
	Code      string
	ClassID   string
	Price     int64 // smallest currency unit, informational
	State     CodeState
	UsedBy    *string    // Pointer to allow for NULL
	UsedAt    *time.Time // Pointer to allow for NULL
	BatchID   string
	CreatedAt time.Time
}

func NewAccessCode(id, code, classID string, price int64, batchID string) (*AccessCode, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if code == "" || classID == "" || price < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &AccessCode{
		ID:        id,
		Code:      code,
		ClassID:   classID,
		Price:     price,
		State:     CodeStateUnused,
		BatchID:   batchID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (c *AccessCode) IsUsed() bool { return c.State == CodeStateUsed }

// UsedByUser reports whether the code was consumed by userID.
func (c *AccessCode) UsedByUser(userID string) bool {
	return c.IsUsed() && c.UsedBy != nil && *c.UsedBy == userID
}

// MarkUsed applies the unused -> used transition in memory.
// It returns domain.ErrConflict if the code was already consumed.
func (c *AccessCode) MarkUsed(userID string, at time.Time) error {
	if c.IsUsed() {
		return domain.ErrConflict
	}
	u := userID
	t := at
	c.State = CodeStateUsed
	c.UsedBy = &u
	c.UsedAt = &t
	return nil
}
