// Package verification aggregates the external verification signals (document
// OCR, face comparison, authenticity check) with the age calculation into one
// judged result. The external analyses are consumed through the ports below,
// never reimplemented here.
package verification

import (
	"context"

	"idverify/internal/decision"
)

// DocumentFields is the text extracted from the identity document.
type DocumentFields struct {
	Name             string `json:"name,omitempty"`
	BirthDate        string `json:"birthDate,omitempty"`
	Address          string `json:"address,omitempty"`
	ExpirationDate   string `json:"expirationDate,omitempty"`
	DocumentNumber   string `json:"documentNumber,omitempty"`
	IssuingAuthority string `json:"issuingAuthority,omitempty"`
}

// OCRResult is the document recognition output.
type OCRResult struct {
	DocumentType string         `json:"documentType"`
	Fields       DocumentFields `json:"fields"`
	Confidence   float64        `json:"confidence"`
}

// FaceQuality describes the captured selfie quality.
type FaceQuality struct {
	Brightness float64 `json:"brightness,omitempty"`
	Blur       float64 `json:"blur,omitempty"`
	Angle      float64 `json:"angle,omitempty"`
	Occlusion  float64 `json:"occlusion,omitempty"`
}

// FaceResult is the face comparison output. Bucket is the provider's own
// PASS/FAIL/REVIEW classification; the judgement works from the score alone.
type FaceResult struct {
	Score   float64      `json:"score"`
	Bucket  string       `json:"bucket"`
	Notes   string       `json:"notes,omitempty"`
	Quality *FaceQuality `json:"quality,omitempty"`
}

// AuthenticityReport is the document authenticity output.
type AuthenticityReport struct {
	Result      decision.AuthenticityResult `json:"result"`
	Confidence  float64                     `json:"confidence"`
	RiskFactors []string                    `json:"riskFactors,omitempty"`
	Notes       string                      `json:"notes,omitempty"`
}

// DocumentRecognizer extracts structured fields from a document image.
type DocumentRecognizer interface {
	Recognize(ctx context.Context, document Image) (OCRResult, error)
}

// FaceComparer scores the likeness between the document portrait and the
// selfie.
type FaceComparer interface {
	Compare(ctx context.Context, document, selfie Image) (FaceResult, error)
}

// AuthenticityChecker judges whether the document image shows signs of
// tampering or forgery.
type AuthenticityChecker interface {
	Check(ctx context.Context, document Image) (AuthenticityReport, error)
}
