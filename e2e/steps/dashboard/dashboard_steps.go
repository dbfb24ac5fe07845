//go:build e2e

package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"

	"eventreg/internal/registration/export"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	AsAdmin(method, path string, body any) error
	GetForm() map[string]any
	GetRegistrationID() string
	GetLastResponseBody() []byte
}

// RegisterSteps registers staff dashboard step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &dashboardSteps{tc: tc}

	ctx.Step(`^as admin I GET "([^"]*)"$`, steps.adminGet)
	ctx.Step(`^as admin I get the saved registration$`, steps.getSaved)
	ctx.Step(`^as admin I update the saved registration with the form$`, steps.updateSaved)
	ctx.Step(`^as admin I delete the saved registration$`, steps.deleteSaved)
	ctx.Step(`^the export should start with a byte order mark$`, steps.exportHasBOM)
	ctx.Step(`^the export should contain a row starting with:$`, steps.exportContainsRow)
}

type dashboardSteps struct {
	tc TestContext
}

func (s *dashboardSteps) adminGet(ctx context.Context, path string) error {
	return s.tc.AsAdmin(http.MethodGet, path, nil)
}

func (s *dashboardSteps) savedPath() (string, error) {
	registrationID := s.tc.GetRegistrationID()
	if registrationID == "" {
		return "", fmt.Errorf("no registration saved")
	}
	return "/admin/inscricoes/" + registrationID, nil
}

func (s *dashboardSteps) getSaved(ctx context.Context) error {
	path, err := s.savedPath()
	if err != nil {
		return err
	}
	return s.tc.AsAdmin(http.MethodGet, path, nil)
}

func (s *dashboardSteps) updateSaved(ctx context.Context) error {
	path, err := s.savedPath()
	if err != nil {
		return err
	}
	return s.tc.AsAdmin(http.MethodPut, path, s.tc.GetForm())
}

func (s *dashboardSteps) deleteSaved(ctx context.Context) error {
	path, err := s.savedPath()
	if err != nil {
		return err
	}
	return s.tc.AsAdmin(http.MethodDelete, path, nil)
}

func (s *dashboardSteps) exportHasBOM(ctx context.Context) error {
	if !strings.HasPrefix(string(s.tc.GetLastResponseBody()), export.BOM) {
		return fmt.Errorf("export does not start with a byte order mark")
	}
	return nil
}

func (s *dashboardSteps) exportContainsRow(ctx context.Context, doc *godog.DocString) error {
	prefix := strings.TrimSpace(doc.Content)
	for _, line := range strings.Split(string(s.tc.GetLastResponseBody()), "\n") {
		if strings.HasPrefix(line, prefix) {
			return nil
		}
	}
	return fmt.Errorf("no row starting with %s\nExport: %s", prefix, string(s.tc.GetLastResponseBody()))
}
