// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "eventreg/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a StaffID where a RegistrationID is expected.
type (
	RegistrationID uuid.UUID
	StaffID        uuid.UUID
	AuditEventID   uuid.UUID
)

// NewRegistrationID returns a fresh random registration identifier.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

// NewAuditEventID returns a fresh random audit event identifier.
func NewAuditEventID() AuditEventID { return AuditEventID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, token claims, CLI flags).

func ParseRegistrationID(s string) (RegistrationID, error) {
	id, err := parseUUID(s, "registration ID")
	return RegistrationID(id), err
}

func ParseStaffID(s string) (StaffID, error) {
	id, err := parseUUID(s, "staff ID")
	return StaffID(id), err
}

func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id StaffID) String() string        { return uuid.UUID(id).String() }
func (id AuditEventID) String() string   { return uuid.UUID(id).String() }

func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id StaffID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets registration IDs travel as plain UUID strings in JSON.
func (id RegistrationID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *RegistrationID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid registration ID format")
	}
	*id = RegistrationID(u)
	return nil
}

// parseUUID is the shared validation logic. The nil UUID is rejected: it never
// names a stored record.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
