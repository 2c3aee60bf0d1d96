package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"receiptguard/internal/model"
)

type MockMetadataRepository struct {
	mock.Mock
}

func (m *MockMetadataRepository) Upsert(ctx context.Context, meta *model.ReceiptMetadata) (*model.ReceiptMetadata, error) {
	args := m.Called(ctx, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReceiptMetadata), args.Error(1)
}

func (m *MockMetadataRepository) FindByReceiptID(ctx context.Context, receiptID string) (*model.ReceiptMetadata, error) {
	args := m.Called(ctx, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReceiptMetadata), args.Error(1)
}
