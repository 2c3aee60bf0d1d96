package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"receiptguard/internal/model"
	"receiptguard/internal/repository"
)

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Create(ctx context.Context, rec *model.Receipt) (*model.Receipt, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByID(ctx context.Context, id string) (*model.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByDigest(ctx context.Context, digest string) (*model.Receipt, error) {
	args := m.Called(ctx, digest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) ListByStudent(ctx context.Context, studentID int64, pq repository.PageQuery) (*repository.PageResult[model.Receipt], error) {
	args := m.Called(ctx, studentID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Receipt]), args.Error(1)
}
