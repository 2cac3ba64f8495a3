package model

type RedeemStatus string

const (
	RedeemStatusRedeemed              RedeemStatus = "redeemed"
	RedeemStatusAlreadyRedeemedBySelf RedeemStatus = "already_redeemed_by_self"
)

// RedeemResult is the outcome of a successful (or benignly repeated) redemption.
// Enrollment may be nil when the user already held access through another path.
type RedeemResult struct {
	Status     RedeemStatus
	Code       *AccessCode
	Enrollment *Enrollment
}

type EnrollStatus string

const (
	EnrollStatusEnrolled        EnrollStatus = "enrolled"
	EnrollStatusAlreadyEnrolled EnrollStatus = "already_enrolled"
)

type EnrollResult struct {
	Status     EnrollStatus
	Enrollment *Enrollment
}

// ClassStats summarizes code usage and enrollment for one class.
type ClassStats struct {
	ClassID     string `json:"class_id"`
	CodesUnused int    `json:"codes_unused"`
	CodesUsed   int    `json:"codes_used"`
	Enrollments int    `json:"enrollments"`
}
