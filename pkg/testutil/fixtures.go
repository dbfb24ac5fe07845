// Package testutil holds fixtures shared by registration tests.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"eventreg/internal/registration/models"
	id "eventreg/pkg/domain"
)

// FixedTime is the creation time fixtures use unless told otherwise.
var FixedTime = time.Date(2025, time.January, 10, 17, 5, 0, 0, time.UTC)

// TestIDs are stable registration ids for assertions.
var TestIDs = struct {
	Registration1 id.RegistrationID
	Registration2 id.RegistrationID
	Staff1        id.StaffID
}{
	Registration1: id.RegistrationID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	Registration2: id.RegistrationID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	Staff1:        id.StaffID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
}

// RegistrationBuilder builds registrations with valid defaults: Ana Silva,
// TI, medium automation, 16 January, no accessibility needs.
type RegistrationBuilder struct {
	r *models.Registration
}

func NewRegistration() *RegistrationBuilder {
	return &RegistrationBuilder{
		r: &models.Registration{
			ID:               id.NewRegistrationID(),
			FullName:         "Ana Silva",
			CorporateEmail:   "ana@acme.com",
			Department:       "TI",
			AutomationLevel:  "medio",
			ParticipationDay: "2025-01-16",
			CreatedAt:        FixedTime,
		},
	}
}

func (b *RegistrationBuilder) WithID(registrationID id.RegistrationID) *RegistrationBuilder {
	b.r.ID = registrationID
	return b
}

func (b *RegistrationBuilder) WithName(name string) *RegistrationBuilder {
	b.r.FullName = name
	return b
}

func (b *RegistrationBuilder) WithEmail(email string) *RegistrationBuilder {
	b.r.CorporateEmail = email
	return b
}

func (b *RegistrationBuilder) WithDepartment(department string) *RegistrationBuilder {
	b.r.Department = department
	return b
}

func (b *RegistrationBuilder) WithLevel(level string) *RegistrationBuilder {
	b.r.AutomationLevel = level
	return b
}

func (b *RegistrationBuilder) WithDay(day models.Day) *RegistrationBuilder {
	b.r.ParticipationDay = day
	return b
}

// WithAccessibility marks the attendee as needing accessibility support.
func (b *RegistrationBuilder) WithAccessibility(detail string) *RegistrationBuilder {
	b.r.NeedsAccessibility = true
	b.r.AccessibilityDetail = &detail
	return b
}

func (b *RegistrationBuilder) WithNotes(notes string) *RegistrationBuilder {
	b.r.Notes = &notes
	return b
}

func (b *RegistrationBuilder) CreatedAt(t time.Time) *RegistrationBuilder {
	b.r.CreatedAt = t
	return b
}

func (b *RegistrationBuilder) Build() *models.Registration {
	return b.r.Clone()
}

// ValidInput returns a form submission that passes validation against the
// default catalog.
func ValidInput() *models.RegistrationInput {
	return &models.RegistrationInput{
		FullName:         "Ana Silva",
		CorporateEmail:   "ana@acme.com",
		Department:       "TI",
		AutomationLevel:  "medio",
		ParticipationDay: "2025-01-16",
	}
}
