package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"receiptguard/internal/model"
)

type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) Create(ctx context.Context, studentID int64, comment string) (*model.ReimbursementRequest, error) {
	args := m.Called(ctx, studentID, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReimbursementRequest), args.Error(1)
}

func (m *MockRequestService) Get(ctx context.Context, id int64) (*model.ReimbursementRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReimbursementRequest), args.Error(1)
}
