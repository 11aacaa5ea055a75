// Package session implements the cross-device verification session: a
// desktop creates a session, a mobile device claims it via the session URL,
// and the verification result is written back for the desktop to poll.
package session

import (
	"time"

	"idverify/internal/decision"
	"idverify/pkg/requestcontext"
)

// Status is the session lifecycle state. Transitions are forward-only:
// pending -> active -> completed, and any state -> expired.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// rank orders the forward-only lifecycle. Expired is terminal and reachable
// from anywhere.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusActive:
		return 1
	case StatusCompleted:
		return 2
	case StatusExpired:
		return 3
	}
	return -1
}

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	return s.rank() >= 0
}

// Result is the final verification outcome stored on a completed session.
// It is written exactly once and never modified afterwards.
type Result struct {
	Judgement  decision.Judgement  `json:"judgement"`
	ReviewType decision.ReviewType `json:"reviewType"`
	Reason     string              `json:"reason"`
	Evidence   decision.Evidence   `json:"evidence"`
	RiskLevel  decision.RiskLevel  `json:"riskLevel"`
	Confidence float64             `json:"confidence"`
	VerifiedAt time.Time           `json:"verifiedAt"`
}

// Session is one cross-device handoff. The ID is an unguessable UUID and is
// the only credential needed to join, so it must never appear in logs.
type Session struct {
	ID         string                    `json:"id"`
	Status     Status                    `json:"status"`
	CreatedAt  time.Time                 `json:"createdAt"`
	ExpiresAt  time.Time                 `json:"expiresAt"`
	ClaimedBy  requestcontext.DeviceKind `json:"claimedBy,omitempty"`
	MobileURL  string                    `json:"mobileUrl"`
	DesktopURL string                    `json:"desktopUrl"`
	Result     *Result                   `json:"result,omitempty"`
}

// ExpiredAt reports whether the session is past its deadline at the given
// wall-clock time. Expiry is decided by this check on every read; it never
// depends on a background timer having fired.
func (s Session) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// EffectiveStatus is the status a reader must see at the given time: once
// past expiresAt every read reports expired, whatever status is stored.
func (s Session) EffectiveStatus(now time.Time) Status {
	if s.Status != StatusExpired && s.ExpiredAt(now) {
		return StatusExpired
	}
	return s.Status
}

// Patch is a partial session update. Nil fields are left untouched.
type Patch struct {
	Status *Status `json:"status,omitempty"`
	Result *Result `json:"result,omitempty"`
}

// Stats counts sessions per lifecycle state.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Expired   int `json:"expired"`
}
