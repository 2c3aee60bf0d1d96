package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"receiptguard/internal/model"
	"receiptguard/internal/repository"
)

var ErrStudentNotFound = errors.New("student not found")

// RequestService defines the use cases for reimbursement requests.
type RequestService interface {
	// Create opens a new request in pending state for a registered student.
	Create(ctx context.Context, studentID int64, comment string) (*model.ReimbursementRequest, error)

	// Get returns a request by its ID.
	Get(ctx context.Context, id int64) (*model.ReimbursementRequest, error)
}

type requestService struct {
	requests repository.RequestRepository
	students repository.StudentRepository
}

// NewRequestService constructs a new RequestService.
func NewRequestService(requests repository.RequestRepository, students repository.StudentRepository) RequestService {
	return &requestService{requests: requests, students: students}
}

func (s *requestService) Create(ctx context.Context, studentID int64, comment string) (*model.ReimbursementRequest, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	return s.requests.Create(ctx, &model.ReimbursementRequest{
		StudentID:   studentID,
		Comment:     comment,
		Status:      model.StatusPending,
		SubmittedAt: time.Now().UTC(),
	})
}

func (s *requestService) Get(ctx context.Context, id int64) (*model.ReimbursementRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}
