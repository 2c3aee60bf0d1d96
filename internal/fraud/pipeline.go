package fraud

import (
	"bytes"
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// TagReader extracts embedded metadata tags from image bytes.
// Implementations must degrade gracefully: undecodable bytes yield an
// empty tag map, not an error. Errors are reserved for context expiry
// and infrastructure faults.
type TagReader interface {
	Tags(ctx context.Context, image []byte) (map[string]string, error)
}

// TextRecognizer recognizes text in image bytes.
// Like TagReader, recognition failure on a valid call is reported as empty
// text, which the text layer treats as its own risk signal.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Pipeline wires the three validation layers together. Integrity must
// complete and pass before the metadata and text layers run; those two are
// independent and run concurrently. All state is per-submission; a
// Pipeline is safe for concurrent use.
type Pipeline struct {
	index      DigestIndex
	tags       TagReader
	ocr        TextRecognizer
	thresholds Thresholds
	timeout    time.Duration
	now        func() time.Time
}

// Outcome carries everything one submission produced. Metadata, Text and
// Assessment are nil when the integrity layer short-circuited: nothing
// beyond the integrity finding exists for a duplicate submission.
type Outcome struct {
	Integrity  IntegrityFinding
	Metadata   *MetadataFinding
	Text       *TextFinding
	Assessment *Assessment
}

// ShortCircuited reports whether the integrity layer halted the pipeline.
func (o *Outcome) ShortCircuited() bool {
	return o.Integrity.IsDuplicate || o.Integrity.IsCrossSubmitterDuplicate
}

// NewPipeline constructs a fraud pipeline. A timeout of zero disables the
// submission-level deadline.
func NewPipeline(index DigestIndex, tags TagReader, ocr TextRecognizer, th Thresholds, timeout time.Duration) *Pipeline {
	return &Pipeline{
		index:      index,
		tags:       tags,
		ocr:        ocr,
		thresholds: th,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Process runs the full pipeline for one submission.
//
// Hard failures (unreadable stream, unavailable digest index) return an
// error and no outcome; the submission is not scored. A duplicate
// returns a short-circuited outcome with only the integrity finding set.
// If the metadata/text layers exceed the submission deadline, the
// remaining work is abandoned and a conservative manual-review assessment
// is returned instead of a silent approve.
func (p *Pipeline) Process(ctx context.Context, image []byte, studentID int64) (*Outcome, error) {
	integrity, err := CheckIntegrity(ctx, p.index, bytes.NewReader(image), studentID)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Integrity: integrity}
	if out.ShortCircuited() {
		return out, nil
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var (
		metaFinding MetadataFinding
		textFinding TextFinding
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tags, err := p.tags.Tags(gctx, image)
		if err != nil {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			// Undecodable metadata is a designed risk signal, not a fault.
			tags = nil
		}
		metaFinding = AnalyzeMetadata(tags, p.now())
		return nil
	})
	g.Go(func() error {
		raw, err := p.ocr.Recognize(gctx, image)
		if err != nil {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			raw = ""
		}
		textFinding = AnalyzeText(raw)
		return nil
	})

	if err := g.Wait(); err != nil {
		out.Assessment = p.timeoutAssessment(integrity)
		return out, nil
	}

	out.Metadata = &metaFinding
	out.Text = &textFinding
	assessment := Combine(integrity, &metaFinding, &textFinding, p.thresholds)
	out.Assessment = &assessment
	return out, nil
}

// timeoutAssessment is the conservative fallback when analysis layers were
// aborted: flag for manual review rather than approve on partial evidence.
func (p *Pipeline) timeoutAssessment(integrity IntegrityFinding) *Assessment {
	flags := append([]string{}, integrity.Flags...)
	flags = append(flags, FlagAnalysisTimeout)
	score := ocrFailedRisk
	return &Assessment{
		RiskScore: score,
		Category:  p.thresholds.categorize(score),
		Action:    ActionReview,
		Flags:     flags,
		Breakdown: map[string]float64{"integrity": 0},
	}
}
