// Package fraud implements the multi-layer fraud-scoring pipeline for
// uploaded receipt images.
//
// Every submission passes through three independent validation layers:
// file integrity (digest + duplicate detection), image-metadata analysis,
// and text extraction. Each layer produces an immutable finding; the
// aggregator combines the findings into one bounded risk score and a
// categorical assessment. The whole pipeline is a deterministic rule
// engine: the same inputs always yield the same score and decision.
package fraud

// Machine-readable reason flags attached to layer findings. Flags are
// diagnostic; the combined flag list preserves order and may repeat.
const (
	// Integrity layer
	FlagFraudSuspected      = "fraud_suspected"
	FlagDuplicateSubmission = "duplicate_submission"

	// Metadata layer
	FlagNoMetadata               = "no_metadata"
	FlagKnownEditingSoftware     = "known_editing_software"
	FlagPostCaptureEditing       = "post_capture_editing_detected"
	FlagUnknownSoftware          = "unknown_software_detected"
	FlagSoftwareWithoutModel     = "software_without_camera_model"
	FlagIncompleteCameraData     = "incomplete_camera_data"
	FlagInconsistentTimestamps   = "inconsistent_timestamps"
	FlagNotMobileCamera          = "not_mobile_camera"
	FlagOldPhoto                 = "old_photo"
	FlagMissingDatetime          = "missing_datetime"

	// Text-extraction layer
	FlagOCRFailed                = "ocr_failed"
	FlagCardIDNotFound           = "card_id_not_found"
	FlagCardIDLowConfidence      = "card_id_low_confidence"
	FlagTransactionIDNotFound    = "transaction_id_not_found"
	FlagLowOCRQuality            = "low_ocr_quality"

	// Pipeline
	FlagAnalysisTimeout = "analysis_timeout"
)

// Category is the three-way risk label attached to a score.
type Category string

const (
	LowRisk    Category = "low_risk"
	MediumRisk Category = "medium_risk"
	HighRisk   Category = "high_risk"
)

// Action is the ingestion-time decision for a submission.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReview  Action = "review"
	ActionReject  Action = "reject"
)

// ExifStatus values for MetadataFinding.ExifStatus.
const (
	ExifPresent = "present"
	ExifMissing = "missing"
)

// IntegrityFinding is the result of the file-integrity layer.
type IntegrityFinding struct {
	Digest                    string   `json:"digest"`
	IsDuplicate               bool     `json:"is_duplicate"`
	IsCrossSubmitterDuplicate bool     `json:"is_cross_submitter_duplicate"`
	MatchedStudentID          int64    `json:"matched_submitter_id,omitempty"`
	MatchedReceiptID          string   `json:"matched_receipt_id,omitempty"`
	Flags                     []string `json:"flags"`
}

// MetadataFinding is the result of the image-metadata layer.
// RiskScore is the raw additive sum and is deliberately not clamped here;
// clamping happens at aggregation. Category is informational only; the
// authoritative category comes from the aggregator.
type MetadataFinding struct {
	ExifStatus      string   `json:"exif_status"`
	IsEdited        bool     `json:"is_edited"`
	EditingTool     string   `json:"editing_tool,omitempty"`
	IsMobileCapture bool     `json:"is_mobile_capture"`
	DeviceModel     string   `json:"device_model,omitempty"`
	CaptureAgeDays  *int     `json:"capture_age_days,omitempty"`
	RiskScore       float64  `json:"risk_score"`
	Flags           []string `json:"flags"`
	Category        Category `json:"category"`
}

// TextFinding is the result of the text-extraction layer.
// Confidences reflect pattern-match strength, not OCR engine certainty.
// Unlike the metadata layer, RiskScore is clamped to [0,1] at this layer.
type TextFinding struct {
	OCRSuccessful           bool     `json:"ocr_successful"`
	RawText                 string   `json:"raw_text"`
	CardID                  string   `json:"card_id,omitempty"`
	CardIDConfidence        float64  `json:"card_id_confidence"`
	TransactionID           string   `json:"transaction_id,omitempty"`
	TransactionIDConfidence float64  `json:"transaction_id_confidence"`
	RiskScore               float64  `json:"risk_score"`
	Flags                   []string `json:"flags"`
}

// Assessment is the combined result produced by the aggregator.
type Assessment struct {
	RiskScore float64            `json:"risk_score"`
	Category  Category           `json:"category"`
	Action    Action             `json:"action"`
	Flags     []string           `json:"flags"`
	Breakdown map[string]float64 `json:"breakdown"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
