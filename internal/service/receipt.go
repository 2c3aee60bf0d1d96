package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"receiptguard/internal/fraud"
	"receiptguard/internal/model"
	"receiptguard/internal/repository"
	"receiptguard/internal/storage"
)

var (
	ErrIDRequired          = errors.New("id is required")
	ErrNotFound            = errors.New("receipt not found")
	ErrReaderNil           = errors.New("reader is nil")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrRequestNotFound     = errors.New("reimbursement request not found")
	ErrRequestMismatch     = errors.New("request does not belong to this student")
	ErrDuplicateReceipt    = errors.New("receipt was already submitted")
	ErrFraudSuspected      = errors.New("receipt was already submitted by another student")
)

// decisionCounter counts upload decisions by pipeline action.
var decisionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "receiptguard_upload_decisions_total",
	Help: "Number of receipt upload decisions, labeled by action.",
}, []string{"action"})

// allowedContentTypes are the receipt image formats accepted for upload.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// UploadParams carries the caller-supplied attributes of one upload.
type UploadParams struct {
	StudentID   int64
	RequestID   int64
	Filename    string
	ContentType string
	Size        int64
}

// UploadResult is what one scored upload produced: the stored receipt and
// the combined fraud assessment.
type UploadResult struct {
	Receipt    *model.Receipt    `json:"receipt"`
	Assessment *fraud.Assessment `json:"assessment"`
}

// ReceiptListResult is the service-level DTO for paginated receipts.
type ReceiptListResult struct {
	Items []model.Receipt `json:"data"`
	Total int             `json:"total"`
}

// FraudPipeline is the scoring dependency of the receipt service.
// *fraud.Pipeline satisfies it.
type FraudPipeline interface {
	Process(ctx context.Context, image []byte, studentID int64) (*fraud.Outcome, error)
}

// ReceiptService defines the use cases for handling receipt submissions.
type ReceiptService interface {
	// Upload validates the file, runs the fraud pipeline, stores the image
	// and its analysis, and moves the reimbursement request to the state
	// the pipeline decided. Duplicates are rejected before anything is stored.
	Upload(ctx context.Context, r io.Reader, p UploadParams) (*UploadResult, error)

	// Get returns a single receipt by its ID.
	Get(ctx context.Context, id string) (*model.Receipt, error)

	// GetAssessment returns the persisted analysis for a receipt.
	GetAssessment(ctx context.Context, receiptID string) (*model.ReceiptMetadata, error)

	// List returns one student's receipts using limit/offset and a total count.
	List(ctx context.Context, studentID int64, limit, offset int) (*ReceiptListResult, error)

	// DownloadURL returns a time-limited URL for fetching the original image.
	DownloadURL(ctx context.Context, id string) (string, error)
}

// receiptService is a concrete implementation of ReceiptService.
type receiptService struct {
	store       storage.Storage
	receipts    repository.ReceiptRepository
	metadata    repository.MetadataRepository
	requests    repository.RequestRepository
	pipeline    FraudPipeline
	maxFileSize int64
}

// NewReceiptService constructs a new ReceiptService.
func NewReceiptService(
	store storage.Storage,
	receipts repository.ReceiptRepository,
	metadata repository.MetadataRepository,
	requests repository.RequestRepository,
	pipeline FraudPipeline,
	maxFileSize int64,
) ReceiptService {
	return &receiptService{
		store:       store,
		receipts:    receipts,
		metadata:    metadata,
		requests:    requests,
		pipeline:    pipeline,
		maxFileSize: maxFileSize,
	}
}

// NewDigestIndex adapts the receipt repository to the pipeline's digest
// lookup. Absence is reported as (nil, nil), matching the index contract.
func NewDigestIndex(receipts repository.ReceiptRepository) fraud.DigestIndex {
	return digestIndex{receipts: receipts}
}

type digestIndex struct {
	receipts repository.ReceiptRepository
}

func (d digestIndex) FindByDigest(ctx context.Context, digest string) (*fraud.DigestOwner, error) {
	rec, err := d.receipts.FindByDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &fraud.DigestOwner{ReceiptID: rec.ID, StudentID: rec.StudentID}, nil
}

func (s *receiptService) Upload(ctx context.Context, r io.Reader, p UploadParams) (*UploadResult, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if !allowedContentTypes[p.ContentType] {
		return nil, ErrUnsupportedFileType
	}
	if s.maxFileSize > 0 && p.Size > s.maxFileSize {
		return nil, ErrFileTooLarge
	}

	req, err := s.requests.FindByID(ctx, p.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.StudentID != p.StudentID {
		return nil, ErrRequestMismatch
	}

	// The pipeline needs the full image: both analysis layers decode the
	// same bytes. Enforce the size cap even when the declared size lied.
	image, err := readCapped(r, s.maxFileSize)
	if err != nil {
		return nil, err
	}

	out, err := s.pipeline.Process(ctx, image, p.StudentID)
	if err != nil {
		return nil, fmt.Errorf("fraud pipeline: %w", err)
	}

	if out.ShortCircuited() {
		return nil, s.rejectDuplicate(ctx, p.RequestID, out.Integrity)
	}

	// Store the image, then the receipt row; roll back storage if the DB
	// save fails.
	ext := filepath.Ext(p.Filename)
	genName := uuid.New().String() + ext
	key := filepath.ToSlash(filepath.Join("receipts", genName))

	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(image), storage.PutObjectOptions{
		Size:        int64(len(image)),
		ContentType: p.ContentType,
		Metadata: map[string]string{
			"original-filename": p.Filename,
			"sha256":            out.Integrity.Digest,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	rec := &model.Receipt{
		ID:          uuid.New().String(),
		StudentID:   p.StudentID,
		RequestID:   p.RequestID,
		Filename:    genName,
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: p.ContentType,
		SHA256:      out.Integrity.Digest,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.receipts.Create(ctx, rec)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		if errors.Is(err, repository.ErrDuplicateDigest) {
			// Lost the race against a concurrent upload of the same bytes.
			return nil, s.rejectDuplicate(ctx, p.RequestID, out.Integrity)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if _, err := s.metadata.Upsert(ctx, buildMetadataRow(stored.ID, out)); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	if err := s.requests.UpdateStatus(ctx, p.RequestID, statusForAction(out.Assessment.Action)); err != nil {
		return nil, fmt.Errorf("update request status: %w", err)
	}
	decisionCounter.WithLabelValues(string(out.Assessment.Action)).Inc()

	return &UploadResult{Receipt: stored, Assessment: out.Assessment}, nil
}

// rejectDuplicate records the reject decision for a duplicate submission and
// returns the error the transport layer maps to a client response.
func (s *receiptService) rejectDuplicate(ctx context.Context, requestID int64, integrity fraud.IntegrityFinding) error {
	if err := s.requests.UpdateStatus(ctx, requestID, model.StatusRejected); err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	decisionCounter.WithLabelValues(string(fraud.ActionReject)).Inc()
	if integrity.IsCrossSubmitterDuplicate {
		return ErrFraudSuspected
	}
	return ErrDuplicateReceipt
}

// Get returns a receipt by ID.
func (s *receiptService) Get(ctx context.Context, id string) (*model.Receipt, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.receipts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// GetAssessment returns the persisted analysis for a receipt.
func (s *receiptService) GetAssessment(ctx context.Context, receiptID string) (*model.ReceiptMetadata, error) {
	if receiptID == "" {
		return nil, ErrIDRequired
	}
	meta, err := s.metadata.FindByReceiptID(ctx, receiptID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return meta, nil
}

// List returns paginated receipts without exposing repository types.
func (s *receiptService) List(ctx context.Context, studentID int64, limit, offset int) (*ReceiptListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.receipts.ListByStudent(ctx, studentID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ReceiptListResult{Items: res.Items, Total: res.Total}, nil
}

// DownloadURL returns a pre-signed URL for the original image, valid 15 minutes.
func (s *receiptService) DownloadURL(ctx context.Context, id string) (string, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, rec.StoragePath, 15*time.Minute)
}

// buildMetadataRow flattens the pipeline outcome into the persisted analysis
// row. A timed-out outcome has no layer findings; only the aggregate columns
// are populated then.
func buildMetadataRow(receiptID string, out *fraud.Outcome) *model.ReceiptMetadata {
	row := &model.ReceiptMetadata{
		ReceiptID: receiptID,
		CreatedAt: time.Now().UTC(),
	}

	if m := out.Metadata; m != nil {
		row.ExifStatus = m.ExifStatus
		row.HasEditingSoftware = m.IsEdited
		row.EditingSoftware = m.EditingTool
		row.IsMobileCapture = m.IsMobileCapture
		row.CameraModel = m.DeviceModel
		row.PhotoAgeDays = m.CaptureAgeDays
		row.MetadataRiskScore = m.RiskScore
	}
	if t := out.Text; t != nil {
		row.OCRSuccessful = t.OCRSuccessful
		row.CardID = t.CardID
		row.CardIDConfidence = t.CardIDConfidence
		row.TransactionID = t.TransactionID
		row.TransactionIDConfidence = t.TransactionIDConfidence
		row.TextRiskScore = t.RiskScore
	}
	if a := out.Assessment; a != nil {
		row.TamperingScore = a.RiskScore
		row.Assessment = string(a.Action)
		row.Flags = a.Flags
		if factors, err := json.Marshal(a.Breakdown); err == nil {
			row.RiskFactors = factors
		}
	}
	return row
}

func statusForAction(a fraud.Action) model.RequestStatus {
	switch a {
	case fraud.ActionReject:
		return model.StatusRejected
	case fraud.ActionReview:
		return model.StatusUnderReview
	default:
		return model.StatusApproved
	}
}

// readCapped reads at most max+1 bytes and fails when the stream is larger
// than the cap. A zero cap disables the check.
func readCapped(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
