package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eventreg/internal/registration/export"
	"eventreg/internal/registration/handler/mocks"
	"eventreg/internal/registration/models"
	"eventreg/internal/registration/report"
	"eventreg/internal/registration/service"
	"eventreg/internal/registration/validation"
	dErrors "eventreg/pkg/domain-errors"
	"eventreg/pkg/platform/httputil"
	"eventreg/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.service.EXPECT().Catalog().Return(models.DefaultCatalog()).AnyTimes()

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	s.router.Route("/admin", h.RegisterAdmin)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decodeError(w *httptest.ResponseRecorder) httputil.ErrorResponse {
	var body httputil.ErrorResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	return body
}

func (s *HandlerSuite) TestSubmit() {
	s.Run("created", func() {
		stored := testutil.NewRegistration().Build()
		s.service.EXPECT().Submit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, input *models.RegistrationInput) (*models.Registration, error) {
				s.Equal("Ana Silva", input.FullName)
				s.Equal("2025-01-16", input.ParticipationDay)
				return stored, nil
			})

		w := s.do(http.MethodPost, "/inscricoes", testutil.ValidInput())

		s.Equal(http.StatusCreated, w.Code)
		var got map[string]any
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&got))
		s.Equal(stored.ID.String(), got["id"])
		s.Equal("ana@acme.com", got["email_corporativo"])
		s.Equal("2025-01-16", got["dia_participacao"])
		s.Nil(got["observacoes"])
	})

	s.Run("validation errors list every field", func() {
		s.service.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, dErrors.NewValidation(
			validation.MsgInvalidRegistration,
			[]dErrors.FieldError{
				{Field: validation.FieldFullName, Message: validation.MsgNameTooShort},
				{Field: validation.FieldAccessibilityDetail, Message: validation.MsgDetailRequired},
			},
		))

		w := s.do(http.MethodPost, "/inscricoes", testutil.ValidInput())

		s.Equal(http.StatusBadRequest, w.Code)
		body := s.decodeError(w)
		s.Equal("validation_error", body.Error)
		s.Require().Len(body.Fields, 2)
		s.Equal(validation.FieldFullName, body.Fields[0].Field)
		s.Equal(validation.MsgDetailRequired, body.Fields[1].Message)
	})

	s.Run("malformed body", func() {
		w := s.do(http.MethodPost, "/inscricoes", `{"nome_completo":`)

		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("bad_request", s.decodeError(w).Error)
	})

	s.Run("store fault is a generic retryable error", func() {
		s.service.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(errStoreDown, dErrors.CodeInternal, service.MsgRetryLater))

		w := s.do(http.MethodPost, "/inscricoes", testutil.ValidInput())

		s.Equal(http.StatusInternalServerError, w.Code)
		body := s.decodeError(w)
		s.Equal("internal_error", body.Error)
		s.Equal(service.MsgRetryLater, body.ErrorDescription)
	})
}

func (s *HandlerSuite) TestCatalog() {
	w := s.do(http.MethodGet, "/catalogo", nil)

	s.Equal(http.StatusOK, w.Code)
	var got CatalogResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&got))
	s.Len(got.Departments, 6)
	s.Len(got.Levels, 3)
	s.Equal(models.Day("2025-01-15"), got.FirstDay)
	s.Require().Len(got.Days, 6)
	s.Equal(DayOption{Value: "2025-01-20", Label: "20/01/2025"}, got.Days[5])
}

func (s *HandlerSuite) TestList() {
	s.Run("passes the parsed filter", func() {
		ti := testutil.NewRegistration().Build()
		day := models.Day("2025-01-16")
		s.service.EXPECT().List(gomock.Any(), report.Filter{Department: "TI", Day: &day}).
			Return(&service.ListResult{Registrations: []*models.Registration{ti}, Total: 5}, nil)

		w := s.do(http.MethodGet, "/admin/inscricoes?departamento=TI&dia=2025-01-16", nil)

		s.Equal(http.StatusOK, w.Code)
		var got ListResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&got))
		s.Equal(5, got.Total)
		s.Equal(1, got.Showing)
		s.Require().Len(got.Registrations, 1)
		s.Equal(ti.ID, got.Registrations[0].ID)
	})

	s.Run("all means no department filter", func() {
		s.service.EXPECT().List(gomock.Any(), report.Filter{}).
			Return(&service.ListResult{}, nil)

		w := s.do(http.MethodGet, "/admin/inscricoes?departamento=all", nil)

		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"inscricoes":[],"total":0,"exibindo":0}`, w.Body.String())
	})

	s.Run("unknown department", func() {
		w := s.do(http.MethodGet, "/admin/inscricoes?departamento=Jur%C3%ADdico", nil)

		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("Departamento inválido", s.decodeError(w).ErrorDescription)
	})

	s.Run("malformed day", func() {
		w := s.do(http.MethodGet, "/admin/inscricoes?dia=16/01/2025", nil)

		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("Data inválida", s.decodeError(w).ErrorDescription)
	})
}

func (s *HandlerSuite) TestGetUpdateDelete() {
	r := testutil.NewRegistration().WithID(testutil.TestIDs.Registration1).Build()
	path := "/admin/inscricoes/" + r.ID.String()

	s.Run("get", func() {
		s.service.EXPECT().Get(gomock.Any(), r.ID).Return(r, nil)

		w := s.do(http.MethodGet, path, nil)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("get unknown", func() {
		s.service.EXPECT().Get(gomock.Any(), r.ID).Return(nil, dErrors.New(dErrors.CodeNotFound, service.MsgNotFound))

		w := s.do(http.MethodGet, path, nil)
		s.Equal(http.StatusNotFound, w.Code)
		s.Equal("not_found", s.decodeError(w).Error)
	})

	s.Run("malformed id never reaches the service", func() {
		w := s.do(http.MethodGet, "/admin/inscricoes/not-a-uuid", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("update", func() {
		s.service.EXPECT().Update(gomock.Any(), r.ID, gomock.Any()).Return(r, nil)

		w := s.do(http.MethodPut, path, testutil.ValidInput())
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("delete", func() {
		s.service.EXPECT().Delete(gomock.Any(), r.ID).Return(nil)

		w := s.do(http.MethodDelete, path, nil)
		s.Equal(http.StatusNoContent, w.Code)
		s.Empty(w.Body.String())
	})
}

func (s *HandlerSuite) TestExport() {
	content := []byte(export.BOM + "Nome Completo;E-mail\n\"Ana\";\"ana@acme.com\"")
	s.service.EXPECT().Export(gomock.Any(), report.Filter{Department: "RH"}).
		Return(&service.ExportResult{FileName: "inscricoes_2025-01-10.csv", Content: content, Rows: 1}, nil)

	w := s.do(http.MethodGet, "/admin/inscricoes/export?departamento=RH", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	s.Equal(`attachment; filename=inscricoes_2025-01-10.csv`, w.Header().Get("Content-Disposition"))
	s.Equal(content, w.Body.Bytes())
}

func (s *HandlerSuite) TestDashboardZeroCounts() {
	s.Run("suppressed by default", func() {
		s.service.EXPECT().Summary(gomock.Any(), report.SuppressZero).Return(&report.Summary{}, nil)

		w := s.do(http.MethodGet, "/admin/dashboard", nil)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("included on request", func() {
		s.service.EXPECT().Summary(gomock.Any(), report.IncludeZero).
			Return(&report.Summary{Total: 2, ByDepartment: []report.Count{{Key: "RH", Label: "RH", Total: 0}}}, nil)

		w := s.do(http.MethodGet, "/admin/dashboard?zeros=incluir", nil)
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"por_departamento":[{"chave":"RH","rotulo":"RH","total":0}]`)
	})
}

var errStoreDown = errors.New("connection refused")
