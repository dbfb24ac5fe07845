//go:build e2e

package e2e

import (
	"github.com/cucumber/godog"

	"eventreg/e2e/steps/common"
	"eventreg/e2e/steps/dashboard"
	"eventreg/e2e/steps/registration"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	registration.RegisterSteps(ctx, tc)
	dashboard.RegisterSteps(ctx, tc)
}
