package imaging

import (
	"bytes"
	"context"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ExifTagReader extracts EXIF metadata from image bytes. Images without
// EXIF data (or that are not images at all) produce an empty tag map:
// absence of metadata is a signal the analysis layer scores, not an error.
type ExifTagReader struct{}

func NewExifTagReader() *ExifTagReader {
	return &ExifTagReader{}
}

func (e *ExifTagReader) Tags(ctx context.Context, image []byte) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x, err := exif.Decode(bytes.NewReader(image))
	if err != nil {
		return map[string]string{}, nil
	}

	c := tagCollector{}
	// Walk never returns an error because the collector never does.
	_ = x.Walk(c)
	return map[string]string(c), nil
}

type tagCollector map[string]string

func (c tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if s, err := tag.StringVal(); err == nil {
		c[string(name)] = strings.TrimSpace(strings.Trim(s, "\x00"))
		return nil
	}
	// Non-ASCII tags render through the tiff formatter; strip the quoting
	// it adds around rational and byte values.
	c[string(name)] = strings.Trim(tag.String(), `"`)
	return nil
}
