package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"receiptguard/internal/model"
)

func TestRequestPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRequestPostgres(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "student_id", "comment", "status", "submitted_at", "reviewed_at"}).
		AddRow(int64(1), int64(5), "bus tickets", "pending", now, nil)

	mock.ExpectQuery("INSERT INTO reimbursement_requests").
		WithArgs(int64(5), "bus tickets", model.StatusPending, now).
		WillReturnRows(rows)

	req, err := repo.Create(context.Background(), &model.ReimbursementRequest{
		StudentID:   5,
		Comment:     "bus tickets",
		Status:      model.StatusPending,
		SubmittedAt: now,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), req.ID)
	assert.Equal(t, model.StatusPending, req.Status)
	assert.Nil(t, req.ReviewedAt)
}

func TestRequestPostgres_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRequestPostgres(db)

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE reimbursement_requests").
			WithArgs(int64(1), model.StatusRejected).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(context.Background(), 1, model.StatusRejected)
		assert.NoError(t, err)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE reimbursement_requests").
			WithArgs(int64(99), model.StatusApproved).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), 99, model.StatusApproved)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
