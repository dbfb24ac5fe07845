//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventreg/internal/platform/config"
	"eventreg/internal/staff/token"
	id "eventreg/pkg/domain"
	"eventreg/pkg/platform/middleware/auth"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	// AdminToken is E2E_ADMIN_TOKEN, or a token minted with the server's
	// configured signing key when unset.
	AdminToken     string
	RegistrationID string
	Form           map[string]any
}

// NewTestContext creates a new test context
func NewTestContext() *TestContext {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &TestContext{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		AdminToken: os.Getenv("E2E_ADMIN_TOKEN"),
	}
}

// MintToken signs a staff token with the configuration the server under test
// loads (EVENTREG_CONFIG and EVENTREG_* variables).
func MintToken(role string) (string, error) {
	cfg, err := config.Load(os.Getenv("EVENTREG_CONFIG"))
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	svc := token.NewService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	return svc.Issue(context.Background(), token.Staff{
		ID:    id.StaffID(uuid.New()),
		Email: "e2e@eventreg.test",
		Role:  role,
	})
}

// Do makes a request with an optional JSON body and stores the response.
func (tc *TestContext) Do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	return tc.Do(http.MethodPost, path, body, nil)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.Do(http.MethodGet, path, nil, headers)
}

// AsAdmin makes a request carrying the admin bearer token.
func (tc *TestContext) AsAdmin(method, path string, body any) error {
	if tc.AdminToken == "" {
		signed, err := MintToken(auth.RoleAdmin)
		if err != nil {
			return err
		}
		tc.AdminToken = signed
	}
	return tc.Do(method, path, body, map[string]string{"Authorization": "Bearer " + tc.AdminToken})
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}
	return false
}

// Getter methods for step package interfaces

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

func (tc *TestContext) GetLastResponseHeader(name string) string {
	if tc.LastResponse == nil {
		return ""
	}
	return tc.LastResponse.Header.Get(name)
}

func (tc *TestContext) GetForm() map[string]any {
	return tc.Form
}

func (tc *TestContext) SetForm(form map[string]any) {
	tc.Form = form
}

func (tc *TestContext) GetRegistrationID() string {
	return tc.RegistrationID
}

func (tc *TestContext) SetRegistrationID(registrationID string) {
	tc.RegistrationID = registrationID
}
