package model

import "time"

// RequestStatus is the review state of a reimbursement request.
type RequestStatus string

const (
	StatusPending     RequestStatus = "pending"
	StatusApproved    RequestStatus = "approved"
	StatusRejected    RequestStatus = "rejected"
	StatusUnderReview RequestStatus = "under_review"
)

// ReimbursementRequest ties one or more receipt submissions to a student.
type ReimbursementRequest struct {
	ID          int64         `json:"id"`
	StudentID   int64         `json:"student_id"`
	Comment     string        `json:"comment,omitempty"`
	Status      RequestStatus `json:"status"`
	SubmittedAt time.Time     `json:"submitted_at"`
	ReviewedAt  *time.Time    `json:"reviewed_at,omitempty"`
}
