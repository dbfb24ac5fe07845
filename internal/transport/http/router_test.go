package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"eventreg/internal/audit"
	"eventreg/internal/platform/health"
	"eventreg/internal/ratelimit"
	"eventreg/internal/registration/export"
	"eventreg/internal/registration/handler"
	"eventreg/internal/registration/metrics"
	"eventreg/internal/registration/models"
	"eventreg/internal/registration/service"
	"eventreg/internal/registration/store"
	"eventreg/internal/registration/validation"
	"eventreg/internal/staff/token"
	id "eventreg/pkg/domain"
	"eventreg/pkg/platform/middleware/auth"
	"eventreg/pkg/platform/middleware/request"
)

const submission = `{
	"nome_completo": "Ana Silva",
	"email_corporativo": "ana@acme.com",
	"departamento": "TI",
	"nivel_automacao": "medio",
	"acessibilidade": false,
	"dia_participacao": "2025-01-16"
}`

type RouterSuite struct {
	suite.Suite
	tokens *token.Service
	audit  *audit.InMemoryStore
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	v, err := validation.New(models.DefaultCatalog())
	s.Require().NoError(err)

	s.audit = audit.NewInMemoryStore()
	svc := service.New(store.NewInMemory(), v, logger,
		service.WithMetrics(metrics.New(reg)),
		service.WithAuditPublisher(audit.NewPublisher(s.audit)),
		service.WithEncoder(export.New(export.WithLocation(time.UTC))),
	)
	s.tokens = token.NewService("router-test-key", "eventreg", "eventreg-dashboard", time.Hour)

	s.router = NewRouter(Deps{
		Registrations:  handler.New(svc, logger),
		Health:         health.New("test", "memory"),
		TokenValidator: token.NewMiddlewareAdapter(s.tokens),
		Metrics:        request.NewMetrics(reg),
		Gatherer:       reg,
		Logger:         logger,
	})
}

func (s *RouterSuite) bearer(role string) string {
	signed, err := s.tokens.Issue(context.Background(), token.Staff{
		ID:    id.StaffID(uuid.New()),
		Email: "rh@acme.com",
		Role:  role,
	})
	s.Require().NoError(err)
	return "Bearer " + signed
}

func (s *RouterSuite) do(method, path, body, authorization string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestPublicSubmitAndAdminList() {
	created := s.do(http.MethodPost, "/inscricoes", submission, "")
	s.Require().Equal(http.StatusCreated, created.Code, created.Body.String())
	s.NotEmpty(created.Header().Get("X-Request-ID"))

	var registration models.Registration
	s.Require().NoError(json.Unmarshal(created.Body.Bytes(), &registration))
	s.Equal("Ana Silva", registration.FullName)

	list := s.do(http.MethodGet, "/admin/inscricoes?departamento=TI", "", s.bearer(auth.RoleAdmin))
	s.Require().Equal(http.StatusOK, list.Code, list.Body.String())

	var body handler.ListResponse
	s.Require().NoError(json.Unmarshal(list.Body.Bytes(), &body))
	s.Equal(1, body.Total)
	s.Equal(1, body.Showing)
	s.Require().Len(body.Registrations, 1)
	s.Equal(registration.ID, body.Registrations[0].ID)
}

func (s *RouterSuite) TestValidationErrorsListEveryField() {
	rec := s.do(http.MethodPost, "/inscricoes", `{"acessibilidade": true}`, "")
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	var body struct {
		Error  string `json:"error"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("validation_error", body.Error)
	s.Require().NotEmpty(body.Fields)
	s.Equal("detalhe_acessibilidade", body.Fields[len(body.Fields)-1].Field)
}

func (s *RouterSuite) TestAdminRequiresToken() {
	rec := s.do(http.MethodGet, "/admin/inscricoes", "", "")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterSuite) TestAdminRejectsOtherRoles() {
	rec := s.do(http.MethodGet, "/admin/dashboard", "", s.bearer("viewer"))
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *RouterSuite) TestWrongContentType() {
	req := httptest.NewRequest(http.MethodPost, "/inscricoes", strings.NewReader(submission))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnsupportedMediaType, rec.Code)
}

func (s *RouterSuite) TestExportIsAttachment() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/inscricoes", submission, "").Code)

	rec := s.do(http.MethodGet, "/admin/inscricoes/export", "", s.bearer(auth.RoleAdmin))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	s.Contains(rec.Header().Get("Content-Disposition"), "attachment")
	s.Contains(rec.Header().Get("Content-Disposition"), "inscricoes_")
	s.True(strings.HasPrefix(rec.Body.String(), export.BOM))
	s.Contains(rec.Body.String(), `"Ana Silva";"ana@acme.com";"TI";"medio";"Não";"";"16/01/2025";"";`)

	events, err := s.audit.ListBySubject(context.Background(), "")
	s.Require().NoError(err)
	s.NotEmpty(events)
}

func (s *RouterSuite) TestDeleteThenGetIsNotFound() {
	created := s.do(http.MethodPost, "/inscricoes", submission, "")
	var registration models.Registration
	s.Require().NoError(json.Unmarshal(created.Body.Bytes(), &registration))

	path := "/admin/inscricoes/" + registration.ID.String()
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, path, "", s.bearer(auth.RoleAdmin)).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, path, "", s.bearer(auth.RoleAdmin)).Code)
}

func (s *RouterSuite) TestProbesAndMetricsArePublic() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/health/live", "", "").Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/health/ready", "", "").Code)

	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/inscricoes", submission, "").Code)
	rec := s.do(http.MethodGet, "/metrics", "", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "eventreg_")
}

func TestNewRouterWithoutGatherer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := validation.New(models.DefaultCatalog())
	require.NoError(t, err)

	router := NewRouter(Deps{
		Registrations:  handler.New(service.New(store.NewInMemory(), v, logger), logger),
		Health:         health.New("test", "memory"),
		TokenValidator: token.NewMiddlewareAdapter(token.NewService("k", "i", "a", time.Minute)),
		Metrics:        request.NewMetrics(prometheus.NewRegistry()),
		Logger:         logger,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicRoutesAreRateLimitedPerClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := validation.New(models.DefaultCatalog())
	require.NoError(t, err)
	tokens := token.NewService("router-test-key", "eventreg", "eventreg-dashboard", time.Hour)

	limits := ratelimit.Config{Enabled: true, Requests: 2, Window: time.Minute}
	router := NewRouter(Deps{
		Registrations:  handler.New(service.New(store.NewInMemory(), v, logger), logger),
		Health:         health.New("test", "memory"),
		TokenValidator: token.NewMiddlewareAdapter(tokens),
		Metrics:        request.NewMetrics(prometheus.NewRegistry()),
		RateLimit:      ratelimit.NewMiddleware(ratelimit.NewInMemoryStore(), limits, logger, nil).Handler,
		Logger:         logger,
	})

	submit := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/inscricoes", strings.NewReader(submission))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusCreated, submit("203.0.113.7:5000").Code)
	require.Equal(t, http.StatusCreated, submit("203.0.113.7:5001").Code)

	limited := submit("203.0.113.7:5002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "rate_limit_exceeded")

	assert.Equal(t, http.StatusCreated, submit("198.51.100.1:5000").Code)

	signed, err := tokens.Issue(context.Background(), token.Staff{ID: id.StaffID(uuid.New()), Email: "rh@acme.com", Role: auth.RoleAdmin})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/inscricoes", nil)
	req.RemoteAddr = "203.0.113.7:5003"
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "dashboard is outside the public limit")
}
