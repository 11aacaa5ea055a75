// Package policy holds the verification policy settings: the thresholds and
// conditions the decision rules evaluate against. Settings are persisted as a
// single document and always loadable; when no stored document exists the
// defaults apply.
package policy

import (
	"encoding/json"
	"fmt"
	"time"
)

// FaceMatchThresholds bound the face comparison score. The three values must
// be ordered Rejected <= ReviewRequired <= Approved.
type FaceMatchThresholds struct {
	Approved       float64 `json:"approved"`
	Rejected       float64 `json:"rejected"`
	ReviewRequired float64 `json:"reviewRequired"`
}

// DocumentAuthenticity controls how the document authenticity verdict is
// interpreted.
type DocumentAuthenticity struct {
	ValidRequired     bool `json:"validRequired"`
	SuspiciousAllowed bool `json:"suspiciousAllowed"`
}

// AgeRestrictions bound the computed age. MaximumAge is optional; nil means
// no upper bound.
type AgeRestrictions struct {
	MinimumAge int  `json:"minimumAge"`
	MaximumAge *int `json:"maximumAge,omitempty"`
}

// OCRConfidence sets the floor for document text extraction confidence.
type OCRConfidence struct {
	MinimumConfidence float64 `json:"minimumConfidence"`
}

// AdditionalConditions toggle the optional cross-checks and the manual review
// escape hatch.
type AdditionalConditions struct {
	RequireNameMatch      bool `json:"requireNameMatch"`
	RequireBirthDateMatch bool `json:"requireBirthDateMatch"`
	RequireAddressMatch   bool `json:"requireAddressMatch"`
	AllowManualReview     bool `json:"allowManualReview"`
}

// Metadata records provenance of the settings document.
type Metadata struct {
	Version     string    `json:"version"`
	LastUpdated time.Time `json:"lastUpdated"`
	UpdatedBy   string    `json:"updatedBy"`
	Description string    `json:"description,omitempty"`
}

// Settings is the full policy document.
type Settings struct {
	FaceMatchThresholds  FaceMatchThresholds  `json:"faceMatchThresholds"`
	DocumentAuthenticity DocumentAuthenticity `json:"documentAuthenticity"`
	AgeRestrictions      AgeRestrictions      `json:"ageRestrictions"`
	OCRConfidence        OCRConfidence        `json:"ocrConfidence"`
	AdditionalConditions AdditionalConditions `json:"additionalConditions"`
	Metadata             Metadata             `json:"metadata"`
}

// Partial is a settings update. Every group and every leaf inside a group is
// optional; an omitted leaf keeps the stored value. A group that names only
// some of its fields must never clear the siblings.
type Partial struct {
	FaceMatchThresholds  *FaceMatchThresholdsPatch  `json:"faceMatchThresholds,omitempty"`
	DocumentAuthenticity *DocumentAuthenticityPatch `json:"documentAuthenticity,omitempty"`
	AgeRestrictions      *AgeRestrictionsPatch      `json:"ageRestrictions,omitempty"`
	OCRConfidence        *OCRConfidencePatch        `json:"ocrConfidence,omitempty"`
	AdditionalConditions *AdditionalConditionsPatch `json:"additionalConditions,omitempty"`
	Description          *string                    `json:"description,omitempty"`
}

// FaceMatchThresholdsPatch updates individual thresholds.
type FaceMatchThresholdsPatch struct {
	Approved       *float64 `json:"approved,omitempty"`
	Rejected       *float64 `json:"rejected,omitempty"`
	ReviewRequired *float64 `json:"reviewRequired,omitempty"`
}

// DocumentAuthenticityPatch updates individual authenticity toggles.
type DocumentAuthenticityPatch struct {
	ValidRequired     *bool `json:"validRequired,omitempty"`
	SuspiciousAllowed *bool `json:"suspiciousAllowed,omitempty"`
}

// AgeRestrictionsPatch updates the age bounds. MaximumAge distinguishes an
// absent key (keep the stored bound) from an explicit null (remove the bound).
type AgeRestrictionsPatch struct {
	MinimumAge *int        `json:"minimumAge,omitempty"`
	MaximumAge OptionalInt `json:"maximumAge"`
}

// OCRConfidencePatch updates the OCR confidence floor.
type OCRConfidencePatch struct {
	MinimumConfidence *float64 `json:"minimumConfidence,omitempty"`
}

// AdditionalConditionsPatch updates individual cross-check toggles.
type AdditionalConditionsPatch struct {
	RequireNameMatch      *bool `json:"requireNameMatch,omitempty"`
	RequireBirthDateMatch *bool `json:"requireBirthDateMatch,omitempty"`
	RequireAddressMatch   *bool `json:"requireAddressMatch,omitempty"`
	AllowManualReview     *bool `json:"allowManualReview,omitempty"`
}

// OptionalInt is an update field whose key can be absent, null, or set.
// Absent keeps the stored value; null clears it.
type OptionalInt struct {
	Present bool
	Value   *int
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Default returns the settings used when no document has been stored yet.
func Default() Settings {
	return Settings{
		FaceMatchThresholds: FaceMatchThresholds{
			Approved:       0.8,
			Rejected:       0.6,
			ReviewRequired: 0.7,
		},
		DocumentAuthenticity: DocumentAuthenticity{
			ValidRequired:     true,
			SuspiciousAllowed: false,
		},
		AgeRestrictions: AgeRestrictions{
			MinimumAge: 18,
		},
		OCRConfidence: OCRConfidence{
			MinimumConfidence: 0.7,
		},
		AdditionalConditions: AdditionalConditions{
			RequireNameMatch:      false,
			RequireBirthDateMatch: false,
			RequireAddressMatch:   false,
			AllowManualReview:     true,
		},
		Metadata: Metadata{
			Version:     "1.0.0",
			UpdatedBy:   "system",
			Description: "default settings",
		},
	}
}

// Validate checks the internal consistency of a settings document. It is
// enforced on every write so an invalid document can never be persisted.
func (s Settings) Validate() error {
	for name, v := range map[string]float64{
		"faceMatchThresholds.approved":       s.FaceMatchThresholds.Approved,
		"faceMatchThresholds.rejected":       s.FaceMatchThresholds.Rejected,
		"faceMatchThresholds.reviewRequired": s.FaceMatchThresholds.ReviewRequired,
		"ocrConfidence.minimumConfidence":    s.OCRConfidence.MinimumConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
		}
	}

	t := s.FaceMatchThresholds
	if t.Rejected > t.ReviewRequired || t.ReviewRequired > t.Approved {
		return fmt.Errorf("face match thresholds must be ordered rejected <= reviewRequired <= approved, got %v <= %v <= %v",
			t.Rejected, t.ReviewRequired, t.Approved)
	}

	if s.AgeRestrictions.MinimumAge < 0 {
		return fmt.Errorf("ageRestrictions.minimumAge must not be negative, got %d", s.AgeRestrictions.MinimumAge)
	}
	if max := s.AgeRestrictions.MaximumAge; max != nil && *max < s.AgeRestrictions.MinimumAge {
		return fmt.Errorf("ageRestrictions.maximumAge %d is below minimumAge %d", *max, s.AgeRestrictions.MinimumAge)
	}

	return nil
}

// Apply merges a partial update over the current settings, leaf by leaf:
// only the leaves the update names change, everything else survives
// unchanged. The metadata is restamped with the update time and actor.
func (s Settings) Apply(p Partial, updatedBy string, now time.Time) Settings {
	out := s
	if g := p.FaceMatchThresholds; g != nil {
		overlay(&out.FaceMatchThresholds.Approved, g.Approved)
		overlay(&out.FaceMatchThresholds.Rejected, g.Rejected)
		overlay(&out.FaceMatchThresholds.ReviewRequired, g.ReviewRequired)
	}
	if g := p.DocumentAuthenticity; g != nil {
		overlay(&out.DocumentAuthenticity.ValidRequired, g.ValidRequired)
		overlay(&out.DocumentAuthenticity.SuspiciousAllowed, g.SuspiciousAllowed)
	}
	if g := p.AgeRestrictions; g != nil {
		overlay(&out.AgeRestrictions.MinimumAge, g.MinimumAge)
		if g.MaximumAge.Present {
			out.AgeRestrictions.MaximumAge = nil
			if g.MaximumAge.Value != nil {
				max := *g.MaximumAge.Value
				out.AgeRestrictions.MaximumAge = &max
			}
		}
	}
	if g := p.OCRConfidence; g != nil {
		overlay(&out.OCRConfidence.MinimumConfidence, g.MinimumConfidence)
	}
	if g := p.AdditionalConditions; g != nil {
		overlay(&out.AdditionalConditions.RequireNameMatch, g.RequireNameMatch)
		overlay(&out.AdditionalConditions.RequireBirthDateMatch, g.RequireBirthDateMatch)
		overlay(&out.AdditionalConditions.RequireAddressMatch, g.RequireAddressMatch)
		overlay(&out.AdditionalConditions.AllowManualReview, g.AllowManualReview)
	}
	if p.Description != nil {
		out.Metadata.Description = *p.Description
	}
	out.Metadata.LastUpdated = now
	out.Metadata.UpdatedBy = updatedBy
	return out
}

// overlay writes the supplied leaf over the stored one; a nil leaf means the
// update did not name it.
func overlay[T any](dst, src *T) {
	if src != nil {
		*dst = *src
	}
}
