package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"receiptguard/internal/model"
	"receiptguard/internal/repository"
)

// MetadataPostgres is a PostgreSQL implementation of repository.MetadataRepository.
type MetadataPostgres struct {
	db *sql.DB
}

// NewMetadataPostgres creates a new MetadataPostgres repository.
func NewMetadataPostgres(db *sql.DB) *MetadataPostgres {
	return &MetadataPostgres{db: db}
}

var _ repository.MetadataRepository = (*MetadataPostgres)(nil)

const metadataColumns = `
	id, receipt_id,
	exif_status, has_editing_software, editing_software, is_mobile_capture, camera_model, photo_age_days, metadata_risk_score,
	ocr_successful, card_id, card_id_confidence, transaction_id, transaction_id_confidence, text_risk_score,
	tampering_score, assessment, flags, risk_factors, created_at
`

// Upsert writes the analysis row for a receipt. A rerun for the same receipt
// replaces the previous row via the receipt_id unique constraint.
func (r *MetadataPostgres) Upsert(ctx context.Context, meta *model.ReceiptMetadata) (*model.ReceiptMetadata, error) {
	flags, err := json.Marshal(meta.Flags)
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO receipt_metadata (
			receipt_id,
			exif_status, has_editing_software, editing_software, is_mobile_capture, camera_model, photo_age_days, metadata_risk_score,
			ocr_successful, card_id, card_id_confidence, transaction_id, transaction_id_confidence, text_risk_score,
			tampering_score, assessment, flags, risk_factors, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (receipt_id) DO UPDATE SET
			exif_status = EXCLUDED.exif_status,
			has_editing_software = EXCLUDED.has_editing_software,
			editing_software = EXCLUDED.editing_software,
			is_mobile_capture = EXCLUDED.is_mobile_capture,
			camera_model = EXCLUDED.camera_model,
			photo_age_days = EXCLUDED.photo_age_days,
			metadata_risk_score = EXCLUDED.metadata_risk_score,
			ocr_successful = EXCLUDED.ocr_successful,
			card_id = EXCLUDED.card_id,
			card_id_confidence = EXCLUDED.card_id_confidence,
			transaction_id = EXCLUDED.transaction_id,
			transaction_id_confidence = EXCLUDED.transaction_id_confidence,
			text_risk_score = EXCLUDED.text_risk_score,
			tampering_score = EXCLUDED.tampering_score,
			assessment = EXCLUDED.assessment,
			flags = EXCLUDED.flags,
			risk_factors = EXCLUDED.risk_factors,
			created_at = EXCLUDED.created_at
		RETURNING ` + metadataColumns

	row := r.db.QueryRowContext(ctx, q,
		meta.ReceiptID,
		meta.ExifStatus,
		meta.HasEditingSoftware,
		meta.EditingSoftware,
		meta.IsMobileCapture,
		meta.CameraModel,
		meta.PhotoAgeDays,
		meta.MetadataRiskScore,
		meta.OCRSuccessful,
		meta.CardID,
		meta.CardIDConfidence,
		meta.TransactionID,
		meta.TransactionIDConfidence,
		meta.TextRiskScore,
		meta.TamperingScore,
		meta.Assessment,
		flags,
		[]byte(meta.RiskFactors),
		meta.CreatedAt,
	)
	return scanMetadata(row)
}

// FindByReceiptID fetches the analysis row for a receipt.
func (r *MetadataPostgres) FindByReceiptID(ctx context.Context, receiptID string) (*model.ReceiptMetadata, error) {
	q := `SELECT ` + metadataColumns + ` FROM receipt_metadata WHERE receipt_id = $1`
	return scanMetadata(r.db.QueryRowContext(ctx, q, receiptID))
}

func scanMetadata(row *sql.Row) (*model.ReceiptMetadata, error) {
	var (
		out         model.ReceiptMetadata
		flags       []byte
		riskFactors []byte
	)
	if err := row.Scan(
		&out.ID,
		&out.ReceiptID,
		&out.ExifStatus,
		&out.HasEditingSoftware,
		&out.EditingSoftware,
		&out.IsMobileCapture,
		&out.CameraModel,
		&out.PhotoAgeDays,
		&out.MetadataRiskScore,
		&out.OCRSuccessful,
		&out.CardID,
		&out.CardIDConfidence,
		&out.TransactionID,
		&out.TransactionIDConfidence,
		&out.TextRiskScore,
		&out.TamperingScore,
		&out.Assessment,
		&flags,
		&riskFactors,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(flags) > 0 {
		if err := json.Unmarshal(flags, &out.Flags); err != nil {
			return nil, err
		}
	}
	out.RiskFactors = riskFactors
	return &out, nil
}
