//go:build e2e

package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseBody() []byte
	GetForm() map[string]any
	SetForm(form map[string]any)
	SetRegistrationID(registrationID string)
}

// RegisterSteps registers public form step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrationSteps{tc: tc}

	ctx.Step(`^a valid registration form for "([^"]*)" with email "([^"]*)"$`, steps.validForm)
	ctx.Step(`^the form field "([^"]*)" is "([^"]*)"$`, steps.setField)
	ctx.Step(`^the form requests accessibility without a detail$`, steps.accessibilityWithoutDetail)
	ctx.Step(`^I submit the form$`, steps.submitForm)
	ctx.Step(`^I save the registration ID from the response$`, steps.saveRegistrationID)
	ctx.Step(`^the field error for "([^"]*)" should be reported$`, steps.fieldErrorReported)
}

type registrationSteps struct {
	tc TestContext
}

func (s *registrationSteps) validForm(ctx context.Context, name, email string) error {
	s.tc.SetForm(map[string]any{
		"nome_completo":     name,
		"email_corporativo": email,
		"departamento":      "TI",
		"nivel_automacao":   "medio",
		"acessibilidade":    false,
		"dia_participacao":  "2025-01-16",
	})
	return nil
}

func (s *registrationSteps) setField(ctx context.Context, field, value string) error {
	form := s.tc.GetForm()
	if form == nil {
		return fmt.Errorf("no form prepared")
	}
	if b, err := strconv.ParseBool(value); err == nil {
		form[field] = b
		return nil
	}
	form[field] = value
	return nil
}

func (s *registrationSteps) accessibilityWithoutDetail(ctx context.Context) error {
	form := s.tc.GetForm()
	if form == nil {
		return fmt.Errorf("no form prepared")
	}
	form["acessibilidade"] = true
	delete(form, "detalhe_acessibilidade")
	return nil
}

func (s *registrationSteps) submitForm(ctx context.Context) error {
	return s.tc.POST("/inscricoes", s.tc.GetForm())
}

func (s *registrationSteps) saveRegistrationID(ctx context.Context) error {
	value, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	registrationID, ok := value.(string)
	if !ok || registrationID == "" {
		return fmt.Errorf("unexpected id %v", value)
	}
	s.tc.SetRegistrationID(registrationID)
	return nil
}

func (s *registrationSteps) fieldErrorReported(ctx context.Context, field string) error {
	var body struct {
		Fields []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	for _, f := range body.Fields {
		if f.Field == field {
			return nil
		}
	}
	return fmt.Errorf("no error for field %s\nResponse: %s", field, string(s.tc.GetLastResponseBody()))
}
