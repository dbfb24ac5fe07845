// Package models defines the registration record, the raw form input it is
// validated from, and the event catalog both are checked against.
package models

import (
	"time"

	id "eventreg/pkg/domain"
)

// Registration is one attendee's stored sign-up.
type Registration struct {
	ID                  id.RegistrationID `json:"id"`
	FullName            string            `json:"nome_completo"`
	CorporateEmail      string            `json:"email_corporativo"`
	Department          string            `json:"departamento"`
	AutomationLevel     string            `json:"nivel_automacao"`
	NeedsAccessibility  bool              `json:"acessibilidade"`
	AccessibilityDetail *string           `json:"detalhe_acessibilidade"`
	ParticipationDay    Day               `json:"dia_participacao"`
	Notes               *string           `json:"observacoes"`
	CreatedAt           time.Time         `json:"created_at"`
}

// RegistrationInput is the form as submitted, before validation. Pointer
// fields distinguish an absent value from an empty one.
type RegistrationInput struct {
	FullName            string  `json:"nome_completo"`
	CorporateEmail      string  `json:"email_corporativo"`
	Department          string  `json:"departamento"`
	AutomationLevel     string  `json:"nivel_automacao"`
	NeedsAccessibility  bool    `json:"acessibilidade"`
	AccessibilityDetail *string `json:"detalhe_acessibilidade"`
	ParticipationDay    string  `json:"dia_participacao"`
	Notes               *string `json:"observacoes"`
}

// Details are the nine editable fields of a registration after validation and
// normalisation: text trimmed, the accessibility detail kept only when
// accessibility is requested, and empty notes stored as nil.
type Details struct {
	FullName            string
	CorporateEmail      string
	Department          string
	AutomationLevel     string
	NeedsAccessibility  bool
	AccessibilityDetail *string
	ParticipationDay    Day
	Notes               *string
}

// NewRegistration stamps validated details with an identity and creation time.
func NewRegistration(registrationID id.RegistrationID, details *Details, createdAt time.Time) *Registration {
	r := &Registration{ID: registrationID, CreatedAt: createdAt}
	r.Apply(details)
	return r
}

// Apply overwrites the editable fields; ID and CreatedAt are untouched.
func (r *Registration) Apply(details *Details) {
	r.FullName = details.FullName
	r.CorporateEmail = details.CorporateEmail
	r.Department = details.Department
	r.AutomationLevel = details.AutomationLevel
	r.NeedsAccessibility = details.NeedsAccessibility
	r.AccessibilityDetail = cloneString(details.AccessibilityDetail)
	r.ParticipationDay = details.ParticipationDay
	r.Notes = cloneString(details.Notes)
}

// Clone returns a deep copy so stores never share pointers with callers.
func (r *Registration) Clone() *Registration {
	if r == nil {
		return nil
	}
	c := *r
	c.AccessibilityDetail = cloneString(r.AccessibilityDetail)
	c.Notes = cloneString(r.Notes)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
