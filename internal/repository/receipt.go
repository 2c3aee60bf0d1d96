package repository

import (
	"context"
	"errors"

	"receiptguard/internal/model"
)

// ErrDuplicateDigest is returned by Create when the receipts table already
// holds a row with the same SHA-256 digest. The unique constraint is the
// serialization point for concurrent uploads of identical bytes.
var ErrDuplicateDigest = errors.New("receipt digest already exists")

// ReceiptRepository defines data access for receipts using SQL queries only.
// No business logic here, strictly persistence operations.
type ReceiptRepository interface {
	// Create inserts a new receipt record.
	// Returns ErrDuplicateDigest when the digest unique constraint fires.
	Create(ctx context.Context, rec *model.Receipt) (*model.Receipt, error)

	// FindByID returns a receipt by its ID.
	FindByID(ctx context.Context, id string) (*model.Receipt, error)

	// FindByDigest returns the receipt holding the given SHA-256 digest,
	// or sql.ErrNoRows when no such receipt exists.
	FindByDigest(ctx context.Context, digest string) (*model.Receipt, error)

	// ListByStudent returns a paginated list of one student's receipts and
	// the total row count.
	ListByStudent(ctx context.Context, studentID int64, pq PageQuery) (*PageResult[model.Receipt], error)
}

// MetadataRepository persists per-receipt analysis results.
type MetadataRepository interface {
	// Upsert inserts the analysis row for a receipt, replacing any previous
	// one. Recomputation overwrites, it never accumulates rows.
	Upsert(ctx context.Context, meta *model.ReceiptMetadata) (*model.ReceiptMetadata, error)

	// FindByReceiptID returns the analysis row for a receipt.
	FindByReceiptID(ctx context.Context, receiptID string) (*model.ReceiptMetadata, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
