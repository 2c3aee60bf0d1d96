// Package imaging provides the image-inspection providers the fraud
// pipeline depends on: EXIF tag extraction and Tesseract-backed text
// recognition.
package imaging

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer recognizes text in receipt images via the system
// Tesseract installation. A fresh gosseract client is created per call
// because the underlying API is not safe for concurrent use.
type TesseractRecognizer struct {
	tessdataPrefix string
	language       string
}

func NewTesseractRecognizer(tessdataPrefix, language string) *TesseractRecognizer {
	return &TesseractRecognizer{
		tessdataPrefix: tessdataPrefix,
		language:       language,
	}
}

// Recognize runs OCR over the image bytes and returns the raw text.
// Tesseract has no cancellation hook, so the context is only checked up
// front; a submission that is already past its deadline skips the engine.
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	client.SetTessdataPrefix(r.tessdataPrefix)
	if err := client.SetLanguage(r.language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}
