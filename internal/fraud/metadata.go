package fraud

import (
	"strings"
	"time"
)

// Risk weights for the metadata layer checks. Each check contributes its
// constant at most once regardless of how many sub-signals fire within it.
const (
	weightNoMetadata        = 0.4
	weightKnownEditor       = 0.5
	weightPostCaptureEdit   = 0.6
	weightUnknownSoftware   = 0.3
	weightInconsistency     = 0.25
	weightOldPhoto          = 0.1
	weightMissingDatetime   = 0.2
	oldPhotoAgeDays         = 90
)

// Layer-local category thresholds. Informational only; the authoritative
// category comes from the aggregator with its configurable thresholds.
const (
	metadataHighRisk   = 0.7
	metadataMediumRisk = 0.4
)

// exifTimeLayout is the fixed EXIF timestamp pattern. Values that do not
// parse are treated as absent, not as errors.
const exifTimeLayout = "2006:01:02 15:04:05"

// AnalyzeMetadata runs the image-metadata layer over an already-extracted
// tag map. An empty or nil map means the image carried no metadata, which
// is itself a risk signal. Risk accumulates additively across independent
// checks; the sum is not clamped here.
func AnalyzeMetadata(tags map[string]string, now time.Time) MetadataFinding {
	f := MetadataFinding{Flags: []string{}}
	risk := 0.0

	if len(tags) == 0 {
		f.ExifStatus = ExifMissing
		f.Flags = append(f.Flags, FlagNoMetadata)
		risk += weightNoMetadata
	} else {
		f.ExifStatus = ExifPresent
	}

	// Known editing software (high confidence).
	if tool, ok := matchAny(tags, editorTagFields, editingSoftware); ok {
		f.IsEdited = true
		f.EditingTool = tool
		f.Flags = append(f.Flags, FlagKnownEditingSoftware)
		risk += weightKnownEditor
	}

	// Mobile capture: no risk by itself, but feeds the unknown-software check.
	if model, ok := matchAny(tags, deviceTagFields, mobileBrands); ok {
		f.IsMobileCapture = true
		f.DeviceModel = model
	}

	// Unknown software (skipped when a known editor already matched).
	if !f.IsEdited {
		if tool, ok := unknownSoftware(tags); ok {
			f.EditingTool = tool
			if f.IsMobileCapture && f.DeviceModel != "" {
				// A real device model plus foreign software means the photo
				// was edited after capture.
				f.Flags = append(f.Flags, FlagPostCaptureEditing)
				risk += weightPostCaptureEdit
			} else {
				f.Flags = append(f.Flags, FlagUnknownSoftware)
				risk += weightUnknownSoftware
			}
		}
	}

	// Tag-set consistency. The weight applies once if any condition fired.
	inconsistencies := consistencyFlags(tags)
	if len(inconsistencies) > 0 {
		f.Flags = append(f.Flags, inconsistencies...)
		risk += weightInconsistency
	}

	if len(tags) > 0 && !f.IsMobileCapture {
		f.Flags = append(f.Flags, FlagNotMobileCamera)
	}

	if age, ok := captureAgeDays(tags, now); ok {
		f.CaptureAgeDays = &age
		if age > oldPhotoAgeDays {
			f.Flags = append(f.Flags, FlagOldPhoto)
			risk += weightOldPhoto
		}
	}

	if len(tags) > 0 {
		if _, ok := tags[tagDateTime]; !ok {
			f.Flags = append(f.Flags, FlagMissingDatetime)
			risk += weightMissingDatetime
		}
	}

	f.RiskScore = risk
	switch {
	case risk >= metadataHighRisk:
		f.Category = HighRisk
	case risk >= metadataMediumRisk:
		f.Category = MediumRisk
	default:
		f.Category = LowRisk
	}
	return f
}

// matchAny returns the original tag value of the first field whose
// lowercased value contains any of the given fragments.
func matchAny(tags map[string]string, fields, fragments []string) (string, bool) {
	for _, field := range fields {
		v, ok := tags[field]
		if !ok {
			continue
		}
		lower := strings.ToLower(v)
		for _, frag := range fragments {
			if strings.Contains(lower, frag) {
				return v, true
			}
		}
	}
	return "", false
}

// unknownSoftware flags any software tag value that does not match the
// safe-software allowlist. Very short values are ignored as OCR-style noise.
func unknownSoftware(tags map[string]string) (string, bool) {
	for _, field := range softwareTagFields {
		v, ok := tags[field]
		if !ok {
			continue
		}
		lower := strings.ToLower(v)
		safe := false
		for _, frag := range safeSoftware {
			if strings.Contains(lower, frag) {
				safe = true
				break
			}
		}
		if !safe && len(lower) > 2 {
			return v, true
		}
	}
	return "", false
}

func consistencyFlags(tags map[string]string) []string {
	var flags []string

	_, hasSoftware := tags[tagSoftware]
	_, hasModel := tags[tagModel]
	_, hasMake := tags[tagMake]
	_, hasDateTime := tags[tagDateTime]

	if hasSoftware && !hasModel {
		flags = append(flags, FlagSoftwareWithoutModel)
	}
	if (!hasMake || !hasModel) && hasDateTime {
		flags = append(flags, FlagIncompleteCameraData)
	}

	original, hasOriginal := tags[tagDateTimeOriginal]
	digitized, hasDigitized := tags[tagDateTimeDigitized]
	if hasOriginal && hasDigitized && original != digitized {
		flags = append(flags, FlagInconsistentTimestamps)
	}

	return flags
}

// captureAgeDays returns the age in days of the first parseable capture
// timestamp. Unparseable values are skipped.
func captureAgeDays(tags map[string]string, now time.Time) (int, bool) {
	for _, field := range captureTimeFields {
		v, ok := tags[field]
		if !ok {
			continue
		}
		ts, err := time.Parse(exifTimeLayout, v)
		if err != nil {
			continue
		}
		return int(now.Sub(ts).Hours() / 24), true
	}
	return 0, false
}
