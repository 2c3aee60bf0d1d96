package repository

import (
	"context"

	"receiptguard/internal/model"
)

// RequestRepository defines data access for reimbursement requests.
type RequestRepository interface {
	// Create inserts a new request in pending state.
	Create(ctx context.Context, req *model.ReimbursementRequest) (*model.ReimbursementRequest, error)

	// FindByID returns a request by its ID.
	FindByID(ctx context.Context, id int64) (*model.ReimbursementRequest, error)

	// UpdateStatus moves a request to the given review state and stamps
	// the review time.
	UpdateStatus(ctx context.Context, id int64, status model.RequestStatus) error
}

// StudentRepository defines read access to registered students.
type StudentRepository interface {
	// FindByID returns a student by ID.
	FindByID(ctx context.Context, id int64) (*model.Student, error)
}
