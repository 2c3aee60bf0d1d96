package model

import (
	"encoding/json"
	"time"
)

// Receipt represents a stored receipt image in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Receipt struct {
	ID          string    `json:"id"`
	StudentID   int64     `json:"student_id"`
	RequestID   int64     `json:"request_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	SHA256      string    `json:"sha256_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReceiptMetadata holds the persisted per-layer findings and the aggregate
// fraud assessment for one receipt. One row per receipt; recomputation
// overwrites the previous values.
type ReceiptMetadata struct {
	ID        int64  `json:"id"`
	ReceiptID string `json:"receipt_id"`

	// Metadata layer
	ExifStatus         string `json:"exif_status"`
	HasEditingSoftware bool   `json:"has_editing_software"`
	EditingSoftware    string `json:"editing_software,omitempty"`
	IsMobileCapture    bool   `json:"is_mobile_capture"`
	CameraModel        string `json:"camera_model,omitempty"`
	PhotoAgeDays       *int   `json:"photo_age_days,omitempty"`
	MetadataRiskScore  float64 `json:"metadata_risk_score"`

	// Text-extraction layer
	OCRSuccessful           bool    `json:"ocr_successful"`
	CardID                  string  `json:"card_id,omitempty"`
	CardIDConfidence        float64 `json:"card_id_confidence"`
	TransactionID           string  `json:"transaction_id,omitempty"`
	TransactionIDConfidence float64 `json:"transaction_id_confidence"`
	TextRiskScore           float64 `json:"text_risk_score"`

	// Aggregate
	TamperingScore float64         `json:"tampering_score"`
	Assessment     string          `json:"assessment"`
	Flags          []string        `json:"flags"`
	RiskFactors    json.RawMessage `json:"risk_factors,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
