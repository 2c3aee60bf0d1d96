package fraud

import (
	"regexp"
	"strings"
)

// Risk weights and confidence constants for the text-extraction layer.
const (
	weightCardIDMissing       = 0.4
	weightCardIDLowConfidence = 0.2
	weightTransactionMissing  = 0.1
	weightLowOCRQuality       = 0.2
	ocrFailedRisk             = 0.5

	cardIDConfidenceFloor = 0.7
	ocrQualityFloor       = 0.6
)

type labelPattern struct {
	re         *regexp.Regexp
	confidence float64
}

// Card-id label patterns, most specific first; the first match wins.
// The dedicated "SERIE CARD" label outranks generic card-number labels.
var cardIDPatterns = []labelPattern{
	{regexp.MustCompile(`(?i)SERIE\s*CARD\s*[:\-]?\s*(\d{6,10})`), 0.9},
	{regexp.MustCompile(`(?i)CARD\s*ID\s*[:\-]?\s*(\d{6,10})`), 0.7},
	{regexp.MustCompile(`(?i)CARD\s*NO\s*[:\-]?\s*(\d{6,10})`), 0.7},
	{regexp.MustCompile(`(?i)STPT\s*ID\s*[:\-]?\s*(\d{6,10})`), 0.7},
	{regexp.MustCompile(`(?i)STPT\s*CARD\s*[:\-]?\s*(\d{6,10})`), 0.7},
}

// Transaction-id patterns: the fixed-length structured code outranks
// labeled generic alphanumeric codes. Match confidence is fixed.
var transactionIDPatterns = []labelPattern{
	{regexp.MustCompile(`(?i)(TR\d{14})`), 0.8},
	{regexp.MustCompile(`(?i)RECEIPT\s*[:\-]?\s*([A-Z0-9\-]{8,20})`), 0.8},
	{regexp.MustCompile(`(?i)TRANSACTION\s*[:\-]?\s*([A-Z0-9\-]{8,20})`), 0.8},
	{regexp.MustCompile(`(?i)REF\s*[:\-]?\s*([A-Z0-9\-]{8,20})`), 0.8},
}

// AnalyzeText runs the text-extraction layer over recognized receipt text.
// Empty text means recognition failed: the layer returns a fixed
// medium-risk finding and attempts no extraction. The final score is
// clamped to [0,1] at this layer.
func AnalyzeText(raw string) TextFinding {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TextFinding{
			OCRSuccessful: false,
			RiskScore:     ocrFailedRisk,
			Flags:         []string{FlagOCRFailed},
		}
	}

	f := TextFinding{OCRSuccessful: true, RawText: raw, Flags: []string{}}
	f.CardID, f.CardIDConfidence = extractToken(raw, cardIDPatterns)
	f.TransactionID, f.TransactionIDConfidence = extractToken(raw, transactionIDPatterns)

	risk := 0.0
	if f.CardID == "" {
		risk += weightCardIDMissing
		f.Flags = append(f.Flags, FlagCardIDNotFound)
	} else if f.CardIDConfidence < cardIDConfidenceFloor {
		risk += weightCardIDLowConfidence
		f.Flags = append(f.Flags, FlagCardIDLowConfidence)
	}

	if f.TransactionID == "" {
		risk += weightTransactionMissing
		f.Flags = append(f.Flags, FlagTransactionIDNotFound)
	}

	if averageConfidence(&f) < ocrQualityFloor {
		risk += weightLowOCRQuality
		f.Flags = append(f.Flags, FlagLowOCRQuality)
	}

	f.RiskScore = clamp01(risk)
	return f
}

func extractToken(text string, patterns []labelPattern) (string, float64) {
	for _, p := range patterns {
		if m := p.re.FindStringSubmatch(text); len(m) > 1 {
			return m[1], p.confidence
		}
	}
	return "", 0.0
}

// averageConfidence averages the confidences of identifiers that were
// actually found; 0.0 when neither was.
func averageConfidence(f *TextFinding) float64 {
	sum, n := 0.0, 0
	if f.CardID != "" {
		sum += f.CardIDConfidence
		n++
	}
	if f.TransactionID != "" {
		sum += f.TransactionIDConfidence
		n++
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}
