package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"receiptguard/internal/model"
	repoMocks "receiptguard/internal/repository/mocks"
)

func TestRequestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mReq := new(repoMocks.MockRequestRepository)
		mStu := new(repoMocks.MockStudentRepository)
		mStu.On("FindByID", ctx, int64(5)).Return(&model.Student{ID: 5}, nil)
		mReq.On("Create", ctx, mock.MatchedBy(func(r *model.ReimbursementRequest) bool {
			return r.StudentID == 5 && r.Status == model.StatusPending
		})).Return(&model.ReimbursementRequest{ID: 1, StudentID: 5, Status: model.StatusPending}, nil)
		svc := NewRequestService(mReq, mStu)

		req, err := svc.Create(ctx, 5, "semester bus pass")

		assert.NoError(t, err)
		assert.Equal(t, model.StatusPending, req.Status)
		mReq.AssertExpectations(t)
		mStu.AssertExpectations(t)
	})

	t.Run("unknown student", func(t *testing.T) {
		mReq := new(repoMocks.MockRequestRepository)
		mStu := new(repoMocks.MockStudentRepository)
		mStu.On("FindByID", ctx, int64(99)).Return(nil, sql.ErrNoRows)
		svc := NewRequestService(mReq, mStu)

		req, err := svc.Create(ctx, 99, "")

		assert.ErrorIs(t, err, ErrStudentNotFound)
		assert.Nil(t, req)
	})
}

func TestRequestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		mReq := new(repoMocks.MockRequestRepository)
		mReq.On("FindByID", ctx, int64(404)).Return(nil, sql.ErrNoRows)
		svc := NewRequestService(mReq, nil)

		req, err := svc.Get(ctx, 404)

		assert.ErrorIs(t, err, ErrRequestNotFound)
		assert.Nil(t, req)
	})
}
