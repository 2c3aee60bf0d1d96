package postgres

import (
	"context"
	"database/sql"

	"receiptguard/internal/model"
	"receiptguard/internal/repository"
)

// RequestPostgres is a PostgreSQL implementation of repository.RequestRepository.
type RequestPostgres struct {
	db *sql.DB
}

// NewRequestPostgres creates a new RequestPostgres repository.
func NewRequestPostgres(db *sql.DB) *RequestPostgres {
	return &RequestPostgres{db: db}
}

var _ repository.RequestRepository = (*RequestPostgres)(nil)

// Create inserts a new reimbursement request row and returns the stored record.
func (r *RequestPostgres) Create(ctx context.Context, req *model.ReimbursementRequest) (*model.ReimbursementRequest, error) {
	const q = `
		INSERT INTO reimbursement_requests (student_id, comment, status, submitted_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, student_id, comment, status, submitted_at, reviewed_at
	`
	row := r.db.QueryRowContext(ctx, q,
		req.StudentID,
		req.Comment,
		req.Status,
		req.SubmittedAt,
	)
	return scanRequest(row)
}

// FindByID fetches a single request by its ID.
func (r *RequestPostgres) FindByID(ctx context.Context, id int64) (*model.ReimbursementRequest, error) {
	const q = `
		SELECT id, student_id, comment, status, submitted_at, reviewed_at
		FROM reimbursement_requests
		WHERE id = $1
	`
	return scanRequest(r.db.QueryRowContext(ctx, q, id))
}

// UpdateStatus moves a request to a new review state and stamps reviewed_at.
func (r *RequestPostgres) UpdateStatus(ctx context.Context, id int64, status model.RequestStatus) error {
	const q = `
		UPDATE reimbursement_requests
		SET status = $2, reviewed_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanRequest(row *sql.Row) (*model.ReimbursementRequest, error) {
	var req model.ReimbursementRequest
	if err := row.Scan(
		&req.ID,
		&req.StudentID,
		&req.Comment,
		&req.Status,
		&req.SubmittedAt,
		&req.ReviewedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}
