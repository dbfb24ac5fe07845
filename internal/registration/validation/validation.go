// Package validation checks a submitted registration form against the event
// catalog and produces the normalised details that get stored.
package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"eventreg/internal/registration/models"
	dErrors "eventreg/pkg/domain-errors"
	"eventreg/pkg/validation"
)

// Field names as they appear on the wire.
const (
	FieldFullName            = "nome_completo"
	FieldCorporateEmail      = "email_corporativo"
	FieldDepartment          = "departamento"
	FieldAutomationLevel     = "nivel_automacao"
	FieldAccessibilityDetail = "detalhe_acessibilidade"
	FieldParticipationDay    = "dia_participacao"
	FieldNotes               = "observacoes"
)

// Messages shown next to the offending form field.
const (
	MsgNameTooShort          = "Nome deve ter pelo menos 3 caracteres"
	MsgNameTooLong           = "Nome deve ter no máximo 100 caracteres"
	MsgEmailInvalid          = "E-mail inválido"
	MsgEmailTooLong          = "E-mail deve ter no máximo 255 caracteres"
	MsgDepartmentMissing     = "Selecione um departamento"
	MsgDepartmentUnknown     = "Departamento inválido"
	MsgLevelMissing          = "Selecione o nível de familiaridade"
	MsgLevelUnknown          = "Nível de familiaridade inválido"
	MsgDetailTooLong         = "Descrição deve ter no máximo 500 caracteres"
	MsgDetailRequired        = "Descreva sua necessidade de acessibilidade"
	MsgDayMissing            = "Selecione o dia de participação"
	MsgDayMalformed          = "Data inválida"
	MsgDayOutsideEvent       = "Dia de participação fora do período do evento"
	MsgNotesTooLong          = "Observações devem ter no máximo 1000 caracteres"
	MsgInvalidRegistration   = "Verifique os campos do formulário"
	messageUnknownConstraint = "Valor inválido"
)

// form is the trimmed view of the input that the per-field rules run on.
// Field order here is the order errors are reported in.
type form struct {
	FullName            string `json:"nome_completo" validate:"min=3,max=100"`
	CorporateEmail      string `json:"email_corporativo" validate:"email,max=255"`
	Department          string `json:"departamento" validate:"required,department"`
	AutomationLevel     string `json:"nivel_automacao" validate:"required,level"`
	AccessibilityDetail string `json:"detalhe_acessibilidade" validate:"max=500"`
	ParticipationDay    string `json:"dia_participacao" validate:"required,datetime=2006-01-02,eventwindow"`
	Notes               string `json:"observacoes" validate:"max=1000"`
}

var messages = map[string]string{
	FieldFullName + ".min":                 MsgNameTooShort,
	FieldFullName + ".max":                 MsgNameTooLong,
	FieldCorporateEmail + ".email":         MsgEmailInvalid,
	FieldCorporateEmail + ".max":           MsgEmailTooLong,
	FieldDepartment + ".required":          MsgDepartmentMissing,
	FieldDepartment + ".department":        MsgDepartmentUnknown,
	FieldAutomationLevel + ".required":     MsgLevelMissing,
	FieldAutomationLevel + ".level":        MsgLevelUnknown,
	FieldAccessibilityDetail + ".max":      MsgDetailTooLong,
	FieldParticipationDay + ".required":    MsgDayMissing,
	FieldParticipationDay + ".datetime":    MsgDayMalformed,
	FieldParticipationDay + ".eventwindow": MsgDayOutsideEvent,
	FieldNotes + ".max":                    MsgNotesTooLong,
}

func message(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return messageUnknownConstraint
}

// Validator is safe for concurrent use.
type Validator struct {
	catalog  models.Catalog
	validate *validator.Validate
}

// New builds a validator bound to catalog.
func New(catalog models.Catalog) (*Validator, error) {
	v := validation.New()
	rules := map[string]validator.Func{
		"department": func(fl validator.FieldLevel) bool {
			return catalog.HasDepartment(fl.Field().String())
		},
		"level": func(fl validator.FieldLevel) bool {
			return catalog.HasLevel(fl.Field().String())
		},
		"eventwindow": func(fl validator.FieldLevel) bool {
			return catalog.InWindow(models.Day(fl.Field().String()))
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s rule: %w", tag, err)
		}
	}
	return &Validator{catalog: catalog, validate: v}, nil
}

// Catalog returns the catalog the validator checks against.
func (v *Validator) Catalog() models.Catalog { return v.catalog }

// Validate checks every field and returns all violations at once, in form
// order, followed by the accessibility cross-field rule. On success it
// returns the normalised details to store.
func (v *Validator) Validate(ctx context.Context, input *models.RegistrationInput) (*models.Details, error) {
	if input == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "missing registration")
	}

	f := form{
		FullName:         strings.TrimSpace(input.FullName),
		CorporateEmail:   strings.TrimSpace(input.CorporateEmail),
		Department:       input.Department,
		AutomationLevel:  input.AutomationLevel,
		ParticipationDay: strings.TrimSpace(input.ParticipationDay),
		Notes:            trimmed(input.Notes),
	}
	// The detail only matters when accessibility is requested; otherwise it is dropped.
	if input.NeedsAccessibility {
		f.AccessibilityDetail = trimmed(input.AccessibilityDetail)
	}

	var fields []dErrors.FieldError
	if err := v.validate.StructCtx(ctx, f); err != nil {
		fields = validation.FieldErrors(err, message)
		if fields == nil {
			return nil, fmt.Errorf("validate registration: %w", err)
		}
	}

	if input.NeedsAccessibility && f.AccessibilityDetail == "" &&
		!validation.HasField(fields, FieldAccessibilityDetail) {
		fields = append(fields, dErrors.FieldError{Field: FieldAccessibilityDetail, Message: MsgDetailRequired})
	}

	if len(fields) > 0 {
		return nil, dErrors.NewValidation(MsgInvalidRegistration, fields)
	}

	details := &models.Details{
		FullName:           f.FullName,
		CorporateEmail:     f.CorporateEmail,
		Department:         f.Department,
		AutomationLevel:    f.AutomationLevel,
		NeedsAccessibility: input.NeedsAccessibility,
		ParticipationDay:   models.Day(f.ParticipationDay),
	}
	if input.NeedsAccessibility {
		details.AccessibilityDetail = &f.AccessibilityDetail
	}
	if f.Notes != "" {
		details.Notes = &f.Notes
	}
	return details, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
