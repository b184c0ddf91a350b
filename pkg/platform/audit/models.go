// Package audit captures structured lifecycle events for credentials and
// assessment attempts. Events are append-only and flow to Kafka in production;
// tests use the in-memory sink.
package audit

import "time"

// Action enumerates the lifecycle events this service emits.
type Action string

const (
	ActionCredentialSubmitted  Action = "credential.submitted"
	ActionCredentialVerified   Action = "credential.verified"
	ActionCredentialRejected   Action = "credential.rejected"
	ActionCredentialUnverified Action = "credential.unverified"
	ActionAttemptGraded        Action = "attempt.graded"
	ActionAnchorIndeterminate  Action = "anchor.indeterminate"
	ActionAnchorConfirmed      Action = "anchor.confirmed"
	ActionAnchorFailed         Action = "anchor.failed"
)

// Event is one audit record. Detail carries event-specific fields such as
// token IDs and transaction hashes; keep values short and non-sensitive.
type Event struct {
	Action    Action            `json:"action"`
	Actor     string            `json:"actor,omitempty"`
	Resource  string            `json:"resource"`
	Detail    map[string]string `json:"detail,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
