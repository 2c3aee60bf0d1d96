package fraud

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeText_RecognitionFailed(t *testing.T) {
	for _, raw := range []string{"", "   \n\t "} {
		f := AnalyzeText(raw)

		assert.False(t, f.OCRSuccessful)
		assert.Empty(t, f.RawText)
		assert.Empty(t, f.CardID)
		assert.Equal(t, 0.0, f.CardIDConfidence)
		assert.Empty(t, f.TransactionID)
		assert.Equal(t, 0.5, f.RiskScore)
		assert.Equal(t, []string{FlagOCRFailed}, f.Flags)
	}
}

func TestAnalyzeText_CardIDExtraction(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantID         string
		wantConfidence float64
	}{
		{
			name:           "dedicated serie card label",
			text:           "SERIE CARD:555845\nTR20250215001234",
			wantID:         "555845",
			wantConfidence: 0.9,
		},
		{
			name:           "serie card with spacing and dash",
			text:           "serie card - 99887766",
			wantID:         "99887766",
			wantConfidence: 0.9,
		},
		{
			name:           "generic card id label",
			text:           "CARD ID: 123456",
			wantID:         "123456",
			wantConfidence: 0.7,
		},
		{
			name:           "card number label",
			text:           "CARD NO 654321",
			wantID:         "654321",
			wantConfidence: 0.7,
		},
		{
			name:           "stpt id label",
			text:           "STPT ID-5558450",
			wantID:         "5558450",
			wantConfidence: 0.7,
		},
		{
			name:           "no card identifier",
			text:           "coffee 3.50 total 3.50",
			wantID:         "",
			wantConfidence: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := AnalyzeText(tt.text)
			assert.Equal(t, tt.wantID, f.CardID)
			assert.Equal(t, tt.wantConfidence, f.CardIDConfidence)
		})
	}
}

func TestAnalyzeText_TransactionIDExtraction(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantID string
	}{
		{name: "structured code", text: "TR20250215001234", wantID: "TR20250215001234"},
		{name: "structured code lowercase", text: "tr20250215001234", wantID: "tr20250215001234"},
		{name: "receipt label", text: "RECEIPT: ABC-12345", wantID: "ABC-12345"},
		{name: "transaction label", text: "TRANSACTION- XYZ99999", wantID: "XYZ99999"},
		{name: "ref label", text: "REF 2024-000188", wantID: "2024-000188"},
		{name: "none", text: "no identifiers here", wantID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := AnalyzeText(tt.text)
			assert.Equal(t, tt.wantID, f.TransactionID)
			if tt.wantID != "" {
				assert.Equal(t, 0.8, f.TransactionIDConfidence)
			} else {
				assert.Equal(t, 0.0, f.TransactionIDConfidence)
			}
		})
	}
}

func TestAnalyzeText_RiskAccumulation(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantRisk  float64
		wantFlags []string
		exclude   []string
	}{
		{
			name:      "both identifiers found with high confidence",
			text:      "SERIE CARD:555845 TR20250215001234",
			wantRisk:  0.0,
			wantFlags: []string{},
			exclude:   []string{FlagCardIDNotFound, FlagTransactionIDNotFound, FlagLowOCRQuality},
		},
		{
			name:      "card found, transaction missing",
			text:      "SERIE CARD:555845 bus ticket",
			wantRisk:  0.1,
			wantFlags: []string{FlagTransactionIDNotFound},
			exclude:   []string{FlagCardIDNotFound, FlagLowOCRQuality},
		},
		{
			name:     "nothing found",
			text:     "illegible smudge",
			wantRisk: 0.4 + 0.1 + 0.2,
			wantFlags: []string{
				FlagCardIDNotFound,
				FlagTransactionIDNotFound,
				FlagLowOCRQuality,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := AnalyzeText(tt.text)
			assert.True(t, f.OCRSuccessful)
			assert.InDelta(t, tt.wantRisk, f.RiskScore, 1e-9)
			for _, flag := range tt.wantFlags {
				assert.Contains(t, f.Flags, flag)
			}
			for _, flag := range tt.exclude {
				assert.NotContains(t, f.Flags, flag)
			}
		})
	}
}

func TestAnalyzeText_RiskScoreAlwaysBounded(t *testing.T) {
	inputs := []string{
		"",
		"SERIE CARD:555845",
		"garbage",
		"CARD ID: 123456 with nothing else",
		"TR20250215001234 only",
	}
	for _, in := range inputs {
		f := AnalyzeText(in)
		assert.GreaterOrEqual(t, f.RiskScore, 0.0)
		assert.LessOrEqual(t, f.RiskScore, 1.0)
	}
}
