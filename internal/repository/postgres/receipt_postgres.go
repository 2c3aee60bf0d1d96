package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"receiptguard/internal/model"
	"receiptguard/internal/repository"
)

// ReceiptPostgres is a PostgreSQL implementation of repository.ReceiptRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ReceiptPostgres struct {
	db *sql.DB
}

// NewReceiptPostgres creates a new ReceiptPostgres repository.
func NewReceiptPostgres(db *sql.DB) *ReceiptPostgres {
	return &ReceiptPostgres{db: db}
}

var _ repository.ReceiptRepository = (*ReceiptPostgres)(nil)

// uniqueViolation is the PostgreSQL error code for a unique constraint breach.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a new receipt row and returns the stored record.
func (r *ReceiptPostgres) Create(ctx context.Context, rec *model.Receipt) (*model.Receipt, error) {
	const q = `
		INSERT INTO receipts (id, student_id, request_id, filename, storage_path, size, content_type, sha256_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, student_id, request_id, filename, storage_path, size, content_type, sha256_hash, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.StudentID,
		rec.RequestID,
		rec.Filename,
		rec.StoragePath,
		rec.Size,
		rec.ContentType,
		rec.SHA256,
		rec.CreatedAt,
	)
	var out model.Receipt
	if err := row.Scan(
		&out.ID,
		&out.StudentID,
		&out.RequestID,
		&out.Filename,
		&out.StoragePath,
		&out.Size,
		&out.ContentType,
		&out.SHA256,
		&out.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateDigest
		}
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single receipt by its ID.
func (r *ReceiptPostgres) FindByID(ctx context.Context, id string) (*model.Receipt, error) {
	const q = `
		SELECT id, student_id, request_id, filename, storage_path, size, content_type, sha256_hash, created_at
		FROM receipts
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// FindByDigest fetches the receipt holding the given SHA-256 digest.
func (r *ReceiptPostgres) FindByDigest(ctx context.Context, digest string) (*model.Receipt, error) {
	const q = `
		SELECT id, student_id, request_id, filename, storage_path, size, content_type, sha256_hash, created_at
		FROM receipts
		WHERE sha256_hash = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, q, digest))
}

func (r *ReceiptPostgres) scanOne(row *sql.Row) (*model.Receipt, error) {
	var rec model.Receipt
	if err := row.Scan(
		&rec.ID,
		&rec.StudentID,
		&rec.RequestID,
		&rec.Filename,
		&rec.StoragePath,
		&rec.Size,
		&rec.ContentType,
		&rec.SHA256,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByStudent returns one student's receipts using LIMIT/OFFSET pagination
// and a total count.
func (r *ReceiptPostgres) ListByStudent(ctx context.Context, studentID int64, pq repository.PageQuery) (*repository.PageResult[model.Receipt], error) {
	const qCount = `SELECT COUNT(*) FROM receipts WHERE student_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, studentID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, student_id, request_id, filename, storage_path, size, content_type, sha256_hash, created_at
		FROM receipts
		WHERE student_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, studentID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Receipt, 0)
	for rows.Next() {
		var rec model.Receipt
		if err := rows.Scan(
			&rec.ID,
			&rec.StudentID,
			&rec.RequestID,
			&rec.Filename,
			&rec.StoragePath,
			&rec.Size,
			&rec.ContentType,
			&rec.SHA256,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Receipt]{
		Items: items,
		Total: total,
	}, nil
}
