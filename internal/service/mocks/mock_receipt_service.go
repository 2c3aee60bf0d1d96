package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"receiptguard/internal/model"
	"receiptguard/internal/service"
)

type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) Upload(ctx context.Context, r io.Reader, p service.UploadParams) (*service.UploadResult, error) {
	args := m.Called(ctx, r, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockReceiptService) Get(ctx context.Context, id string) (*model.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

func (m *MockReceiptService) GetAssessment(ctx context.Context, receiptID string) (*model.ReceiptMetadata, error) {
	args := m.Called(ctx, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReceiptMetadata), args.Error(1)
}

func (m *MockReceiptService) List(ctx context.Context, studentID int64, limit, offset int) (*service.ReceiptListResult, error) {
	args := m.Called(ctx, studentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReceiptListResult), args.Error(1)
}

func (m *MockReceiptService) DownloadURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}
