package fraud

// Lingering duplicate weights applied only when an already-persisted
// assessment is recomputed with duplicate flags still present. On the
// ingestion path duplicates short-circuit before aggregation instead.
const (
	crossDuplicateWeight = 0.9
	sameDuplicateWeight  = 0.3
)

// Thresholds carries the two separately configurable threshold pairs.
// Action thresholds drive the ingestion-time decision; category thresholds
// label the stored assessment.
type Thresholds struct {
	ActionReject   float64
	ActionReview   float64
	CategoryHigh   float64
	CategoryMedium float64
}

// DefaultThresholds returns the standard threshold pairs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ActionReject:   0.8,
		ActionReview:   0.5,
		CategoryHigh:   0.7,
		CategoryMedium: 0.4,
	}
}

// Combine merges the layer findings into one aggregate assessment.
// It is a pure function of its inputs: same findings, same assessment.
//
// Any duplicate signal forces a reject: cross-submitter duplication is the
// strongest signal in the whole pipeline and is never outvoted by clean
// metadata or text findings. Metadata and text scores are summed, not
// averaged: each layer is an independent suspicion source. The total is
// clamped to [0,1]; the per-layer raw contributions are preserved in
// Breakdown for audit.
func Combine(integrity IntegrityFinding, meta *MetadataFinding, text *TextFinding, th Thresholds) Assessment {
	total := 0.0
	breakdown := map[string]float64{}
	flags := append([]string{}, integrity.Flags...)

	if integrity.IsCrossSubmitterDuplicate {
		total += crossDuplicateWeight
		breakdown["integrity"] = crossDuplicateWeight
	} else if integrity.IsDuplicate {
		total += sameDuplicateWeight
		breakdown["integrity"] = sameDuplicateWeight
	} else {
		breakdown["integrity"] = 0
	}

	if meta != nil {
		total += meta.RiskScore
		breakdown["metadata"] = meta.RiskScore
		flags = append(flags, meta.Flags...)
	}
	if text != nil {
		total += text.RiskScore
		breakdown["text_extraction"] = text.RiskScore
		flags = append(flags, text.Flags...)
	}

	total = clamp01(total)

	a := Assessment{
		RiskScore: total,
		Category:  th.categorize(total),
		Flags:     flags,
		Breakdown: breakdown,
	}

	switch {
	case integrity.IsCrossSubmitterDuplicate || integrity.IsDuplicate:
		a.Action = ActionReject
	case total >= th.ActionReject:
		a.Action = ActionReject
	case total >= th.ActionReview:
		a.Action = ActionReview
	default:
		a.Action = ActionApprove
	}
	return a
}

func (th Thresholds) categorize(score float64) Category {
	switch {
	case score >= th.CategoryHigh:
		return HighRisk
	case score >= th.CategoryMedium:
		return MediumRisk
	default:
		return LowRisk
	}
}
