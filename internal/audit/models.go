package audit

import "time"

// Category classifies audit events by their primary purpose. This enables
// different retention policies, storage backends, and routing.
type Category string

const (
	// CategoryCompliance covers events with legal/regulatory significance,
	// such as completed identity checks. These require long retention.
	CategoryCompliance Category = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// credential changes, policy changes, failed authentication.
	CategorySecurity Category = "security"

	// CategoryOperations covers routine activity useful for debugging.
	// These can be sampled or aggregated with shorter retention.
	CategoryOperations Category = "operations"
)

// Action names the audited operation.
type Action string

const (
	ActionSessionCreated        Action = "session_created"
	ActionSessionUpdated        Action = "session_updated"
	ActionVerificationPerformed Action = "verification_performed"
	ActionSettingsUpdated       Action = "settings_updated"
	ActionSettingsReset         Action = "settings_reset"
	ActionAPIKeyIssued          Action = "api_key_issued"
	ActionAPIKeyRevoked         Action = "api_key_revoked"
	ActionAuthFailed            Action = "auth_failed"
)

var actionCategories = map[Action]Category{
	ActionSessionCreated:        CategoryOperations,
	ActionSessionUpdated:        CategoryOperations,
	ActionVerificationPerformed: CategoryCompliance,
	ActionSettingsUpdated:       CategorySecurity,
	ActionSettingsReset:         CategorySecurity,
	ActionAPIKeyIssued:          CategorySecurity,
	ActionAPIKeyRevoked:         CategorySecurity,
	ActionAuthFailed:            CategorySecurity,
}

// Category returns the category for this action. Unknown actions default to
// CategoryOperations.
func (a Action) Category() Category {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from the transport layer to capture key actions. Subject
// identifies the resource by route pattern, never by raw session ID: the
// session ID is a credential and must not reach the audit trail.
type Event struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Action    Action    `json:"action"`
	Actor     string    `json:"actor,omitempty"`
	Subject   string    `json:"subject"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	ClientIP  string    `json:"clientIp,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
