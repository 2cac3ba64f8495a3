package apiv1

import (
	"time"

	"class-access/internal/domain/model"
)

type RedeemRequest struct {
	Code string `json:"code"`
}

type RedeemResponse struct {
	Status       string `json:"status"`
	ClassID      string `json:"class_id"`
	EnrollmentID string `json:"enrollment_id,omitempty"`
}

type EnrollResponse struct {
	Status       string `json:"status"`
	ClassID      string `json:"class_id"`
	EnrollmentID string `json:"enrollment_id,omitempty"`
}

type AccessResponse struct {
	ClassID   string `json:"class_id"`
	HasAccess bool   `json:"has_access"`
}

type Enrollment struct {
	ID         string    `json:"id"`
	ClassID    string    `json:"class_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

type IssueCodesRequest struct {
	Count int   `json:"count"`
	Price int64 `json:"price"`
}

type IssueCodesResponse struct {
	BatchID string       `json:"batch_id"`
	Codes   []AccessCode `json:"codes"`
}

type AccessCode struct {
	Code      string     `json:"code"`
	ClassID   string     `json:"class_id"`
	Price     int64      `json:"price"`
	State     string     `json:"state"`
	UsedBy    *string    `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	BatchID   string     `json:"batch_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func toEnrollment(e *model.Enrollment) Enrollment {
	return Enrollment{ID: e.ID, ClassID: e.ClassID, EnrolledAt: e.EnrolledAt}
}

func toAccessCode(c *model.AccessCode) AccessCode {
	return AccessCode{
		Code:      c.Code,
		ClassID:   c.ClassID,
		Price:     c.Price,
		State:     string(c.State),
		UsedBy:    c.UsedBy,
		UsedAt:    c.UsedAt,
		BatchID:   c.BatchID,
		CreatedAt: c.CreatedAt,
	}
}
