package validation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"eventreg/internal/registration/models"
	dErrors "eventreg/pkg/domain-errors"
)

func ptr(s string) *string { return &s }

func validInput() *models.RegistrationInput {
	return &models.RegistrationInput{
		FullName:         "Ana Silva",
		CorporateEmail:   "ana@empresa.com",
		Department:       "TI",
		AutomationLevel:  "medio",
		ParticipationDay: "2025-01-16",
	}
}

type ValidatorSuite struct {
	suite.Suite
	validator *Validator
	ctx       context.Context
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	v, err := New(models.DefaultCatalog())
	s.Require().NoError(err)
	s.validator = v
	s.ctx = context.Background()
}

func (s *ValidatorSuite) fields(input *models.RegistrationInput) []dErrors.FieldError {
	details, err := s.validator.Validate(s.ctx, input)
	s.Require().Error(err)
	s.Nil(details)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	return dErrors.FieldsOf(err)
}

func (s *ValidatorSuite) TestValidInputIsNormalised() {
	input := validInput()
	input.FullName = "  Ana Silva  "
	input.CorporateEmail = " ana@empresa.com "
	input.Notes = ptr("   ")

	details, err := s.validator.Validate(s.ctx, input)

	s.Require().NoError(err)
	s.Equal("Ana Silva", details.FullName)
	s.Equal("ana@empresa.com", details.CorporateEmail)
	s.Equal(models.Day("2025-01-16"), details.ParticipationDay)
	s.Nil(details.Notes, "blank notes are stored as null")
	s.Nil(details.AccessibilityDetail)
}

func (s *ValidatorSuite) TestNameLengthBoundaries() {
	s.Run("two characters fail", func() {
		input := validInput()
		input.FullName = "Al"
		s.Equal([]dErrors.FieldError{{Field: FieldFullName, Message: MsgNameTooShort}}, s.fields(input))
	})

	s.Run("three characters pass", func() {
		input := validInput()
		input.FullName = "Ana"
		_, err := s.validator.Validate(s.ctx, input)
		s.NoError(err)
	})

	s.Run("padding does not count", func() {
		input := validInput()
		input.FullName = "  Al  "
		s.Equal(MsgNameTooShort, s.fields(input)[0].Message)
	})

	s.Run("hundred accented characters pass", func() {
		input := validInput()
		input.FullName = strings.Repeat("é", 100)
		_, err := s.validator.Validate(s.ctx, input)
		s.NoError(err)
	})

	s.Run("hundred and one fail", func() {
		input := validInput()
		input.FullName = strings.Repeat("a", 101)
		s.Equal(MsgNameTooLong, s.fields(input)[0].Message)
	})
}

func (s *ValidatorSuite) TestEmail() {
	input := validInput()
	input.CorporateEmail = "ana.empresa.com"
	s.Equal([]dErrors.FieldError{{Field: FieldCorporateEmail, Message: MsgEmailInvalid}}, s.fields(input))

	input.CorporateEmail = strings.Repeat("a", 250) + "@x.com"
	s.Equal(FieldCorporateEmail, s.fields(input)[0].Field)
}

func (s *ValidatorSuite) TestCatalogMembership() {
	input := validInput()
	input.Department = ""
	input.AutomationLevel = "especialista"

	s.Equal([]dErrors.FieldError{
		{Field: FieldDepartment, Message: MsgDepartmentMissing},
		{Field: FieldAutomationLevel, Message: MsgLevelUnknown},
	}, s.fields(input))

	input.Department = "Jurídico"
	input.AutomationLevel = ""
	s.Equal([]dErrors.FieldError{
		{Field: FieldDepartment, Message: MsgDepartmentUnknown},
		{Field: FieldAutomationLevel, Message: MsgLevelMissing},
	}, s.fields(input))
}

func (s *ValidatorSuite) TestParticipationDay() {
	cases := map[string]string{
		"":           MsgDayMissing,
		"16/01/2025": MsgDayMalformed,
		"2025-01-32": MsgDayMalformed,
		"2025-01-14": MsgDayOutsideEvent,
		"2025-01-21": MsgDayOutsideEvent,
	}
	for day, msg := range cases {
		input := validInput()
		input.ParticipationDay = day
		s.Equal([]dErrors.FieldError{{Field: FieldParticipationDay, Message: msg}}, s.fields(input), day)
	}

	for _, day := range []string{"2025-01-15", "2025-01-20"} {
		input := validInput()
		input.ParticipationDay = day
		_, err := s.validator.Validate(s.ctx, input)
		s.NoError(err, day)
	}
}

func (s *ValidatorSuite) TestAccessibilityRequiresDetail() {
	for _, detail := range []*string{nil, ptr(""), ptr("   ")} {
		input := validInput()
		input.NeedsAccessibility = true
		input.AccessibilityDetail = detail

		s.Equal([]dErrors.FieldError{{Field: FieldAccessibilityDetail, Message: MsgDetailRequired}}, s.fields(input))
	}

	input := validInput()
	input.NeedsAccessibility = true
	input.AccessibilityDetail = ptr("  Intérprete de Libras ")
	details, err := s.validator.Validate(s.ctx, input)
	s.Require().NoError(err)
	s.Require().NotNil(details.AccessibilityDetail)
	s.Equal("Intérprete de Libras", *details.AccessibilityDetail)
}

func (s *ValidatorSuite) TestDetailIgnoredWithoutAccessibility() {
	input := validInput()
	input.NeedsAccessibility = false
	input.AccessibilityDetail = ptr(strings.Repeat("x", 600))

	details, err := s.validator.Validate(s.ctx, input)

	s.Require().NoError(err)
	s.Nil(details.AccessibilityDetail, "stray detail is dropped")
}

func (s *ValidatorSuite) TestDetailTooLongIsReportedOnce() {
	input := validInput()
	input.NeedsAccessibility = true
	input.AccessibilityDetail = ptr(strings.Repeat("x", 501))

	s.Equal([]dErrors.FieldError{{Field: FieldAccessibilityDetail, Message: MsgDetailTooLong}}, s.fields(input))
}

func (s *ValidatorSuite) TestNotesLimit() {
	input := validInput()
	input.Notes = ptr(strings.Repeat("n", 1000))
	_, err := s.validator.Validate(s.ctx, input)
	s.NoError(err)

	input.Notes = ptr(strings.Repeat("n", 1001))
	s.Equal([]dErrors.FieldError{{Field: FieldNotes, Message: MsgNotesTooLong}}, s.fields(input))
}

func (s *ValidatorSuite) TestAllErrorsReportedInFormOrderWithCrossFieldLast() {
	input := &models.RegistrationInput{
		FullName:           "Al",
		CorporateEmail:     "invalid",
		NeedsAccessibility: true,
		Notes:              ptr(strings.Repeat("n", 1001)),
	}

	s.Equal([]dErrors.FieldError{
		{Field: FieldFullName, Message: MsgNameTooShort},
		{Field: FieldCorporateEmail, Message: MsgEmailInvalid},
		{Field: FieldDepartment, Message: MsgDepartmentMissing},
		{Field: FieldAutomationLevel, Message: MsgLevelMissing},
		{Field: FieldParticipationDay, Message: MsgDayMissing},
		{Field: FieldNotes, Message: MsgNotesTooLong},
		{Field: FieldAccessibilityDetail, Message: MsgDetailRequired},
	}, s.fields(input))
}

func (s *ValidatorSuite) TestNilInput() {
	_, err := s.validator.Validate(s.ctx, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestCustomCatalog(t *testing.T) {
	catalog := models.Catalog{
		Departments: []string{"Jurídico"},
		Levels:      []models.Level{{Value: "n1", Label: "Nível 1"}},
		FirstDay:    "2026-03-01",
		LastDay:     "2026-03-01",
	}
	v, err := New(catalog)
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), &models.RegistrationInput{
		FullName:         "Bruno Costa",
		CorporateEmail:   "bruno@empresa.com",
		Department:       "Jurídico",
		AutomationLevel:  "n1",
		ParticipationDay: "2026-03-01",
	})
	require.NoError(t, err)
	require.Equal(t, catalog, v.Catalog())
}
