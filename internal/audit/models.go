package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	// Actor is the staff e-mail for dashboard actions, or "public" for form submissions.
	Actor  string
	Action string
	// Subject is the registration id the action touched; empty for bulk actions.
	Subject   string
	Detail    string
	RequestID string
}

type AuditEvent string

const (
	EventRegistrationSubmitted AuditEvent = "registration_submitted"
	EventRegistrationUpdated   AuditEvent = "registration_updated"
	EventRegistrationDeleted   AuditEvent = "registration_deleted"
	EventRegistrationsExported AuditEvent = "registrations_exported"
)
