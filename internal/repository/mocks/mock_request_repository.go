package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"receiptguard/internal/model"
)

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *model.ReimbursementRequest) (*model.ReimbursementRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReimbursementRequest), args.Error(1)
}

func (m *MockRequestRepository) FindByID(ctx context.Context, id int64) (*model.ReimbursementRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReimbursementRequest), args.Error(1)
}

func (m *MockRequestRepository) UpdateStatus(ctx context.Context, id int64, status model.RequestStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) FindByID(ctx context.Context, id int64) (*model.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Student), args.Error(1)
}
