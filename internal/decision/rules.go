package decision

import (
	"fmt"
	"strings"

	"idverify/internal/policy"
)

// severity splits rules into the two classes the chain knows about.
type severity int

const (
	// hard rules short-circuit with an immediate automatic rejection.
	hard severity = iota
	// soft rules accumulate reasons and only block automatic approval.
	soft
)

// rule is one step of the ordered chain. check returns whether the rule
// fired and, if so, the human-readable reason.
type rule struct {
	name     string
	severity severity
	check    func(ev Evidence, p policy.Settings) (fired bool, reason string)
}

// ruleChain is evaluated in order. The order is part of the contract:
// a later hard rule still rejects even when an earlier soft rule has already
// recorded a deficiency, and a minor is always rejected outright rather than
// routed to manual review.
//
// Threshold comparisons are inclusive on the passing side: a face score equal
// to the rejection threshold survives rule 1, and a score equal to the
// approval threshold satisfies approval.
var ruleChain = []rule{
	{
		name:     "face_score_rejected",
		severity: hard,
		check: func(ev Evidence, p policy.Settings) (bool, string) {
			if ev.FaceScore < p.FaceMatchThresholds.Rejected {
				return true, fmt.Sprintf("face match score too low: %.2f (minimum: %.2f)",
					ev.FaceScore, p.FaceMatchThresholds.Rejected)
			}
			return false, ""
		},
	},
	{
		name:     "face_score_below_approval",
		severity: soft,
		check: func(ev Evidence, p policy.Settings) (bool, string) {
			if ev.FaceScore < p.FaceMatchThresholds.Approved {
				return true, fmt.Sprintf("face match score below approval bar: %.2f (minimum: %.2f)",
					ev.FaceScore, p.FaceMatchThresholds.Approved)
			}
			return false, ""
		},
	},
	{
		name:     "document_not_valid",
		severity: hard,
		check: func(ev Evidence, p policy.Settings) (bool, string) {
			if p.DocumentAuthenticity.ValidRequired && ev.Authenticity != AuthenticityValid {
				return true, fmt.Sprintf("document authenticity check failed: %s", ev.Authenticity)
			}
			return false, ""
		},
	},
	{
		name:     "document_suspicious",
		severity: soft,
		check: func(ev Evidence, p policy.Settings) (bool, string) {
			if !p.DocumentAuthenticity.SuspiciousAllowed && ev.Authenticity == AuthenticitySuspicious {
				return true, "document flagged as suspicious"
			}
			return false, ""
		},
	},
	{
		name:     "below_minimum_age",
		severity: hard,
		check: func(ev Evidence, p policy.Settings) (bool, string) {
			if ev.Age < p.AgeRestrictions.MinimumAge {
				return true, fmt.Sprintf("age below minimum: %d (minimum: %d)",
					ev.Age, p.AgeRestrictions.MinimumAge)
			}
			return false, ""
		},
	},
	{
		name:     "above_maximum_age",
		severity: hard,
		check: func(ev Evidence, p policy.Settings) (bool, string) {
			if p.AgeRestrictions.MaximumAge != nil && ev.Age > *p.AgeRestrictions.MaximumAge {
				return true, fmt.Sprintf("age above maximum: %d (maximum: %d)",
					ev.Age, *p.AgeRestrictions.MaximumAge)
			}
			return false, ""
		},
	},
	{
		name:     "ocr_confidence_low",
		severity: soft,
		check: func(ev Evidence, p policy.Settings) (bool, string) {
			if ev.OCRConfidence < p.OCRConfidence.MinimumConfidence {
				return true, fmt.Sprintf("OCR confidence too low: %.2f (minimum: %.2f)",
					ev.OCRConfidence, p.OCRConfidence.MinimumConfidence)
			}
			return false, ""
		},
	},
	{
		name:     "name_mismatch",
		severity: soft,
		check: func(ev Evidence, p policy.Settings) (bool, string) {
			// An absent comparison never fires; only an explicit mismatch does.
			if p.AdditionalConditions.RequireNameMatch && ev.NameMatch != nil && !*ev.NameMatch {
				return true, "name does not match the document"
			}
			return false, ""
		},
	},
	{
		name:     "birth_date_mismatch",
		severity: soft,
		check: func(ev Evidence, p policy.Settings) (bool, string) {
			if p.AdditionalConditions.RequireBirthDateMatch && ev.BirthDateMatch != nil && !*ev.BirthDateMatch {
				return true, "birth date does not match the document"
			}
			return false, ""
		},
	},
	{
		name:     "address_mismatch",
		severity: soft,
		check: func(ev Evidence, p policy.Settings) (bool, string) {
			if p.AdditionalConditions.RequireAddressMatch && ev.AddressMatch != nil && !*ev.AddressMatch {
				return true, "address does not match the document"
			}
			return false, ""
		},
	},
}

// Decide folds the ordered rule chain over the evidence. Hard rules
// short-circuit with REJECTED/AUTO; soft rules accumulate into the reason
// list. With a clean chain and a face score at or above the approval
// threshold the attempt is approved automatically; otherwise it goes to
// manual review when the policy allows it, or is rejected.
func Decide(ev Evidence, p policy.Settings) Outcome {
	var reasons []string

	for _, r := range ruleChain {
		fired, reason := r.check(ev, p)
		if !fired {
			continue
		}
		if r.severity == hard {
			return Outcome{
				Judgement:  JudgementRejected,
				ReviewType: ReviewAuto,
				Reason:     reason,
			}
		}
		reasons = append(reasons, reason)
	}

	if len(reasons) == 0 && ev.FaceScore >= p.FaceMatchThresholds.Approved {
		return Outcome{
			Judgement:  JudgementApproved,
			ReviewType: ReviewAuto,
			Reason:     "all conditions satisfied",
		}
	}

	if p.AdditionalConditions.AllowManualReview {
		return Outcome{
			Judgement:  JudgementReviewRequired,
			ReviewType: ReviewManual,
			Reason:     strings.Join(reasons, ", "),
		}
	}

	return Outcome{
		Judgement:  JudgementRejected,
		ReviewType: ReviewAuto,
		Reason:     strings.Join(reasons, ", "),
	}
}
