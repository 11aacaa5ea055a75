package decision

// RiskLevel classifies an attempt for audit and manual-review triage. It is
// informational: the judgement never reads it, and the two scales can evolve
// independently.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// CalculateRiskLevel scores the evidence additively and maps the total to a
// level. Each supplied risk factor (reported by the authenticity check)
// contributes one point.
func CalculateRiskLevel(faceScore float64, authenticity AuthenticityResult, riskFactors []string) RiskLevel {
	score := 0

	switch {
	case faceScore < 0.6:
		score += 3
	case faceScore < 0.8:
		score += 1
	}

	switch authenticity {
	case AuthenticityInvalid:
		score += 3
	case AuthenticitySuspicious:
		score += 2
	}

	score += len(riskFactors)

	switch {
	case score >= 5:
		return RiskCritical
	case score >= 3:
		return RiskHigh
	case score >= 1:
		return RiskMedium
	default:
		return RiskLow
	}
}
