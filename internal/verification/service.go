package verification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"idverify/internal/age"
	"idverify/internal/decision"
	"idverify/internal/decision/metrics"
	"idverify/internal/policy"
	"idverify/internal/session"
	dErrors "idverify/pkg/domain-errors"
	"idverify/pkg/requestcontext"
)

// PolicyLoader supplies the active policy settings.
type PolicyLoader interface {
	Load(ctx context.Context) (policy.Settings, bool)
}

// SessionCompleter writes the final result back onto a handoff session.
type SessionCompleter interface {
	Complete(ctx context.Context, id string, result session.Result) (session.Session, error)
}

// Request is one verification attempt. UserInfo is optional reference data
// for cross-checking against the recognized document fields.
type Request struct {
	DocumentImage string    `json:"documentImage"`
	SelfieImage   string    `json:"selfieImage"`
	UserInfo      *UserInfo `json:"userInfo,omitempty"`
	SessionID     string    `json:"sessionId,omitempty"`
}

// UserInfo is applicant-supplied reference data. All fields are optional; an
// absent field skips the corresponding cross-check entirely.
type UserInfo struct {
	Name      string `json:"name,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Result is the full aggregated verification record returned to the caller
// and, when a session is attached, stored on the session.
type Result struct {
	DocumentType         string                      `json:"documentType"`
	DocumentOCR          DocumentFields              `json:"documentOcr"`
	FaceMatchScore       float64                     `json:"faceMatchScore"`
	FaceMatchBucket      string                      `json:"faceMatchResult"`
	FaceQuality          *FaceQuality                `json:"faceQuality,omitempty"`
	DocumentAuthenticity decision.AuthenticityResult `json:"documentAuthenticity"`
	AgeVerification      *age.Result                 `json:"ageVerification,omitempty"`
	Judgement            decision.Judgement          `json:"finalJudgement"`
	ReviewType           decision.ReviewType         `json:"reviewType"`
	Reason               string                      `json:"reason"`
	RiskLevel            decision.RiskLevel          `json:"riskLevel"`
	Evidence             decision.Evidence           `json:"evidence"`
	ProcessingTime       int64                       `json:"processingTime"`
	Confidence           float64                     `json:"confidence"`
	SessionID            string                      `json:"sessionId,omitempty"`
	Timestamp            time.Time                   `json:"timestamp"`
}

// Service runs the verification pipeline: validate images, gather the three
// external signals in parallel, compute age and cross-checks, judge, and
// complete the attached session.
type Service struct {
	recognizer   DocumentRecognizer
	faces        FaceComparer
	authenticity AuthenticityChecker
	policies     PolicyLoader
	sessions     SessionCompleter
	ages         *age.Calculator
	logger       *slog.Logger
	metrics      *metrics.Metrics
	timeout      time.Duration
}

func NewService(
	recognizer DocumentRecognizer,
	faces FaceComparer,
	authenticity AuthenticityChecker,
	policies PolicyLoader,
	sessions SessionCompleter,
	ages *age.Calculator,
	logger *slog.Logger,
	m *metrics.Metrics,
	timeout time.Duration,
) *Service {
	return &Service{
		recognizer:   recognizer,
		faces:        faces,
		authenticity: authenticity,
		policies:     policies,
		sessions:     sessions,
		ages:         ages,
		logger:       logger,
		metrics:      m,
		timeout:      timeout,
	}
}

// Verify runs one verification attempt. Any collaborator failure fails the
// attempt closed: the caller gets an error, never a default judgement.
func (s *Service) Verify(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	document, err := ParseImage(req.DocumentImage)
	if err != nil {
		return Result{}, dErrors.New(dErrors.CodeInvalidInput, "document image: "+err.Error())
	}
	selfie, err := ParseImage(req.SelfieImage)
	if err != nil {
		return Result{}, dErrors.New(dErrors.CodeInvalidInput, "selfie image: "+err.Error())
	}

	ocr, face, authenticity, err := s.gather(ctx, document, selfie)
	if err != nil {
		return Result{}, err
	}

	now := requestcontext.Now(ctx)

	// An unreadable birth date leaves age at zero, which the minimum-age
	// rule rejects. Never guess an age.
	var ageResult *age.Result
	evidenceAge := 0
	if ocr.Fields.BirthDate != "" {
		computed, ageErr := s.ages.Compute(ocr.Fields.BirthDate, now)
		if ageErr != nil {
			s.logger.WarnContext(ctx, "birth date unusable for age check",
				"request_id", requestcontext.RequestID(ctx),
				"error", ageErr)
		} else {
			ageResult = &computed
			evidenceAge = computed.Age
		}
	}

	evidence := decision.Evidence{
		OCRConfidence: ocr.Confidence,
		FaceScore:     face.Score,
		Authenticity:  authenticity.Result,
		Age:           evidenceAge,
	}
	s.crossCheck(&evidence, ocr.Fields, req.UserInfo)

	settings, usedFallback := s.policies.Load(ctx)
	if usedFallback {
		s.logger.WarnContext(ctx, "judging with default settings",
			"request_id", requestcontext.RequestID(ctx))
	}

	outcome := decision.Decide(evidence, settings)
	risk := decision.CalculateRiskLevel(face.Score, authenticity.Result, authenticity.RiskFactors)

	result := Result{
		DocumentType:         ocr.DocumentType,
		DocumentOCR:          ocr.Fields,
		FaceMatchScore:       face.Score,
		FaceMatchBucket:      face.Bucket,
		FaceQuality:          face.Quality,
		DocumentAuthenticity: authenticity.Result,
		AgeVerification:      ageResult,
		Judgement:            outcome.Judgement,
		ReviewType:           outcome.ReviewType,
		Reason:               outcome.Reason,
		RiskLevel:            risk,
		Evidence:             evidence,
		ProcessingTime:       time.Since(start).Milliseconds(),
		Confidence:           overallConfidence(ocr.Confidence, face.Score, authenticity.Confidence),
		SessionID:            req.SessionID,
		Timestamp:            now,
	}

	s.metrics.IncrementOutcome(string(outcome.Judgement), string(outcome.ReviewType))
	s.metrics.IncrementRisk(string(risk))
	s.metrics.ObserveVerifyLatency(time.Since(start))

	s.logger.InfoContext(ctx, "verification judged",
		"request_id", requestcontext.RequestID(ctx),
		"judgement", outcome.Judgement,
		"review_type", outcome.ReviewType,
		"risk_level", risk)

	if req.SessionID != "" {
		s.completeSession(ctx, req.SessionID, result)
	}

	return result, nil
}

// gather runs the three collaborator calls in parallel under a shared
// timeout. The first failure cancels the rest.
func (s *Service) gather(ctx context.Context, document, selfie Image) (OCRResult, FaceResult, AuthenticityReport, error) {
	gctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		gctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		ocr          OCRResult
		face         FaceResult
		authenticity AuthenticityReport
	)

	g, gctx := errgroup.WithContext(gctx)
	g.Go(func() error {
		var err error
		if ocr, err = s.recognizer.Recognize(gctx, document); err != nil {
			return fmt.Errorf("document recognition: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if face, err = s.faces.Compare(gctx, document, selfie); err != nil {
			return fmt.Errorf("face comparison: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if authenticity, err = s.authenticity.Check(gctx, document); err != nil {
			return fmt.Errorf("authenticity check: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "verification collaborator failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err)
		return OCRResult{}, FaceResult{}, AuthenticityReport{},
			dErrors.New(dErrors.CodeUnavailable, "verification processing failed")
	}
	return ocr, face, authenticity, nil
}

// crossCheck fills the optional match fields. A comparison runs only when
// both the reference value and the recognized value are present.
func (s *Service) crossCheck(evidence *decision.Evidence, fields DocumentFields, info *UserInfo) {
	if info == nil {
		return
	}
	if info.Name != "" && fields.Name != "" {
		match := namesMatch(info.Name, fields.Name)
		evidence.NameMatch = &match
	}
	if info.BirthDate != "" && fields.BirthDate != "" {
		match := info.BirthDate == fields.BirthDate
		evidence.BirthDateMatch = &match
	}
	if info.Address != "" && fields.Address != "" {
		match := info.Address == fields.Address
		evidence.AddressMatch = &match
	}
}

// completeSession writes the result back to the handoff session.
// Best-effort: the caller already holds the result, and an expired or
// already-completed session must never change it.
func (s *Service) completeSession(ctx context.Context, sessionID string, result Result) {
	_, err := s.sessions.Complete(ctx, sessionID, session.Result{
		Judgement:  result.Judgement,
		ReviewType: result.ReviewType,
		Reason:     result.Reason,
		Evidence:   result.Evidence,
		RiskLevel:  result.RiskLevel,
		Confidence: result.Confidence,
		VerifiedAt: result.Timestamp,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record result on session",
			"request_id", requestcontext.RequestID(ctx),
			"error", err)
	}
}

// overallConfidence is the weighted blend of the three signal confidences:
// OCR 40%, face 40%, authenticity 20%.
func overallConfidence(ocr, face, authenticity float64) float64 {
	return ocr*0.4 + face*0.4 + authenticity*0.2
}
