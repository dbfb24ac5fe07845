// Package handler exposes the registration service over HTTP: the public form
// endpoints and the staff dashboard API.
package handler

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eventreg/internal/registration/models"
	"eventreg/internal/registration/report"
	"eventreg/internal/registration/service"
	id "eventreg/pkg/domain"
	dErrors "eventreg/pkg/domain-errors"
	"eventreg/pkg/platform/httputil"
	"eventreg/pkg/requestcontext"
)

// Service is the registration flow the handlers drive.
type Service interface {
	Catalog() models.Catalog
	Submit(ctx context.Context, input *models.RegistrationInput) (*models.Registration, error)
	List(ctx context.Context, filter report.Filter) (*service.ListResult, error)
	Get(ctx context.Context, registrationID id.RegistrationID) (*models.Registration, error)
	Update(ctx context.Context, registrationID id.RegistrationID, input *models.RegistrationInput) (*models.Registration, error)
	Delete(ctx context.Context, registrationID id.RegistrationID) error
	Summary(ctx context.Context, zeros report.ZeroCounts) (*report.Summary, error)
	Export(ctx context.Context, filter report.Filter) (*service.ExportResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the public routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/inscricoes", h.HandleSubmit)
	r.Get("/catalogo", h.HandleCatalog)
}

// RegisterAdmin mounts the dashboard routes. The caller wraps r with staff
// authentication.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/inscricoes", h.HandleList)
	r.Get("/inscricoes/export", h.HandleExport)
	r.Get("/inscricoes/{id}", h.HandleGet)
	r.Put("/inscricoes/{id}", h.HandleUpdate)
	r.Delete("/inscricoes/{id}", h.HandleDelete)
	r.Get("/dashboard", h.HandleDashboard)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	input, ok := httputil.DecodeJSON[models.RegistrationInput](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	registration, err := h.service.Submit(ctx, input)
	if err != nil {
		h.writeServiceError(ctx, w, "registration submission failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, registration)
}

func (h *Handler) HandleCatalog(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, newCatalogResponse(h.service.Catalog()))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseFilter(r.URL.Query(), h.service.Catalog())
	if err != nil {
		h.writeServiceError(ctx, w, "invalid list filter", err)
		return
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list registrations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(result))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	registrationID, err := parseRegistrationID(r)
	if err != nil {
		h.writeServiceError(ctx, w, "invalid registration id", err)
		return
	}

	registration, err := h.service.Get(ctx, registrationID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load registration", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, registration)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	registrationID, err := parseRegistrationID(r)
	if err != nil {
		h.writeServiceError(ctx, w, "invalid registration id", err)
		return
	}
	input, ok := httputil.DecodeJSON[models.RegistrationInput](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	registration, err := h.service.Update(ctx, registrationID, input)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to update registration", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, registration)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	registrationID, err := parseRegistrationID(r)
	if err != nil {
		h.writeServiceError(ctx, w, "invalid registration id", err)
		return
	}

	if err := h.service.Delete(ctx, registrationID); err != nil {
		h.writeServiceError(ctx, w, "failed to delete registration", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleExport streams the filtered registrations as a CSV attachment.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseFilter(r.URL.Query(), h.service.Catalog())
	if err != nil {
		h.writeServiceError(ctx, w, "invalid export filter", err)
		return
	}

	result, err := h.service.Export(ctx, filter)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to export registrations", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Content); err != nil {
		h.logger.WarnContext(ctx, "failed to write export body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// HandleDashboard returns the aggregate view. Categories nobody picked are
// left out unless zeros=incluir.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.Summary(ctx, parseZeroCounts(r.URL.Query()))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to summarise registrations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	}
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

func parseRegistrationID(r *http.Request) (id.RegistrationID, error) {
	registrationID, err := id.ParseRegistrationID(chi.URLParam(r, "id"))
	if err != nil {
		return registrationID, dErrors.Wrap(err, dErrors.CodeBadRequest, "Identificador de inscrição inválido")
	}
	return registrationID, nil
}
