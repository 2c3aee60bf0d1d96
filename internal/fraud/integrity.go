package fraud

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// DigestOwner identifies the receipt already stored under a digest.
type DigestOwner struct {
	ReceiptID string
	StudentID int64
}

// DigestIndex looks up previously accepted receipts by content digest.
// Implementations must observe all prior commits: a stale read here would
// let a duplicate slip through. Returns (nil, nil) when the digest is unknown.
type DigestIndex interface {
	FindByDigest(ctx context.Context, digest string) (*DigestOwner, error)
}

// ComputeDigest returns the hex-encoded SHA-256 of the full byte stream.
// The reader is consumed in chunks; the result is independent of chunking.
func ComputeDigest(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CheckIntegrity runs the file-integrity layer: it digests the upload and
// classifies it as novel, duplicate-by-same-submitter, or duplicate across
// submitters. The layer is read-only; persisting a newly accepted digest is
// the caller's responsibility.
//
// An unreadable stream or an unavailable index is a hard failure; the
// submission cannot be scored without a novelty decision.
func CheckIntegrity(ctx context.Context, idx DigestIndex, r io.Reader, studentID int64) (IntegrityFinding, error) {
	digest, err := ComputeDigest(r)
	if err != nil {
		return IntegrityFinding{}, err
	}

	owner, err := idx.FindByDigest(ctx, digest)
	if err != nil {
		return IntegrityFinding{}, fmt.Errorf("duplicate lookup: %w", err)
	}

	f := IntegrityFinding{Digest: digest, Flags: []string{}}
	if owner == nil {
		return f, nil
	}

	f.MatchedReceiptID = owner.ReceiptID
	f.MatchedStudentID = owner.StudentID
	if owner.StudentID == studentID {
		f.IsDuplicate = true
		f.Flags = append(f.Flags, FlagDuplicateSubmission)
	} else {
		f.IsCrossSubmitterDuplicate = true
		f.Flags = append(f.Flags, FlagFraudSuspected)
	}
	return f, nil
}
