package model

import "time"

type AccessSource string

const (
	AccessSourceRedemption     AccessSource = "redemption"
	AccessSourceFreeEnrollment AccessSource = "free_enrollment"
)

// AccessGrantedEvent is emitted once per new enrollment, after it commits.
type AccessGrantedEvent struct {
	UserID       string       `json:"user_id"`
	ClassID      string       `json:"class_id"`
	EnrollmentID string       `json:"enrollment_id,omitempty"`
	Source       AccessSource `json:"source"`
	At           time.Time    `json:"at"`
}
