// Package decision turns normalized verification evidence into a final
// judgement under the active policy settings. The rules are centralized here
// and kept pure so they stay testable without I/O.
package decision

// AuthenticityResult is the document authenticity verdict produced by the
// external document check.
type AuthenticityResult string

const (
	AuthenticityValid      AuthenticityResult = "VALID"
	AuthenticityInvalid    AuthenticityResult = "INVALID"
	AuthenticitySuspicious AuthenticityResult = "SUSPICIOUS"
)

// Judgement is the final verdict for one verification attempt.
type Judgement string

const (
	JudgementApproved       Judgement = "APPROVED"
	JudgementRejected       Judgement = "REJECTED"
	JudgementReviewRequired Judgement = "REVIEW_REQUIRED"
)

// ReviewType says whether the verdict was reached automatically or needs a
// human reviewer.
type ReviewType string

const (
	ReviewAuto   ReviewType = "AUTO"
	ReviewManual ReviewType = "MANUAL"
)

// Evidence is the normalized signal set for one verification attempt.
// The match fields are tri-state: nil means the comparison was not performed
// (no reference value supplied), which is different from an explicit mismatch.
type Evidence struct {
	OCRConfidence float64            `json:"ocrConfidence"`
	FaceScore     float64            `json:"faceScore"`
	Authenticity  AuthenticityResult `json:"authenticityResult"`
	Age           int                `json:"age"`

	NameMatch      *bool `json:"nameMatch,omitempty"`
	BirthDateMatch *bool `json:"birthDateMatch,omitempty"`
	AddressMatch   *bool `json:"addressMatch,omitempty"`
}

// Outcome is the result of evaluating the rule chain.
type Outcome struct {
	Judgement  Judgement  `json:"judgement"`
	ReviewType ReviewType `json:"reviewType"`
	Reason     string     `json:"reason"`
}
