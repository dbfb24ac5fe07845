// Package service orchestrates the registration flow: form validation, the
// record store, the aggregate engine and the CSV encoder.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventreg/internal/audit"
	"eventreg/internal/platform/tracer"
	"eventreg/internal/registration/export"
	"eventreg/internal/registration/metrics"
	"eventreg/internal/registration/models"
	"eventreg/internal/registration/report"
	"eventreg/internal/registration/validation"
	id "eventreg/pkg/domain"
	dErrors "eventreg/pkg/domain-errors"
	"eventreg/pkg/platform/privacy"
	"eventreg/pkg/platform/sentinel"
	"eventreg/pkg/requestcontext"
)

// Store persists registrations.
// Error Contract:
//   - FindByID, Update and Delete wrap sentinel.ErrNotFound when the id is unknown
//   - List returns registrations newest first
//   - any other error is an infrastructure fault
type Store interface {
	Create(ctx context.Context, registration *models.Registration) error
	List(ctx context.Context) ([]*models.Registration, error)
	FindByID(ctx context.Context, registrationID id.RegistrationID) (*models.Registration, error)
	Update(ctx context.Context, registration *models.Registration) error
	Delete(ctx context.Context, registrationID id.RegistrationID) error
}

// User-facing messages for failures that are not field errors.
const (
	MsgRetryLater = "Tente novamente mais tarde."
	MsgNotFound   = "Inscrição não encontrada"
)

type Option func(*Service)

type Service struct {
	store     Store
	validator *validation.Validator
	encoder   *export.Encoder
	auditor   *audit.Publisher
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	logger    *slog.Logger
}

func New(store Store, validator *validation.Validator, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		validator: validator,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.encoder == nil {
		svc.encoder = export.New()
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

// WithEncoder replaces the default export encoder (São Paulo time, hardened quoting).
func WithEncoder(e *export.Encoder) Option {
	return func(s *Service) {
		s.encoder = e
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// Catalog returns the event catalog submissions are validated against.
func (s *Service) Catalog() models.Catalog {
	return s.validator.Catalog()
}

// Submit validates a public form submission and stores it.
func (s *Service) Submit(ctx context.Context, input *models.RegistrationInput) (_ *models.Registration, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSubmit)
	defer func() { span.End(err) }()

	details, err := s.validate(ctx, span, input)
	if err != nil {
		s.incSubmission(metrics.OutcomeInvalid)
		return nil, err
	}
	span.SetAttributes(
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail(details.CorporateEmail)),
		tracer.String(tracer.AttrDepartment, details.Department),
		tracer.String(tracer.AttrDay, details.ParticipationDay.String()),
	)

	registration := models.NewRegistration(id.NewRegistrationID(), details, requestcontext.Now(ctx))
	if err := s.timed("create", func() error { return s.store.Create(ctx, registration) }); err != nil {
		s.incSubmission(metrics.OutcomeFailed)
		return nil, s.storeFault(ctx, "create", err)
	}

	s.incSubmission(metrics.OutcomeStored)
	s.logger.InfoContext(ctx, "registration submitted",
		"registration_id", registration.ID.String(),
		"email", privacy.MaskEmail(registration.CorporateEmail),
		"department", registration.Department,
		"day", registration.ParticipationDay.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, span, audit.EventRegistrationSubmitted, registration.ID.String(), registration.Department)
	return registration, nil
}

// ListResult is one filtered view of the store snapshot.
type ListResult struct {
	Registrations []*models.Registration
	// Total counts every stored registration, before filtering.
	Total int
}

// Showing is the number of registrations that passed the filter.
func (r *ListResult) Showing() int {
	return len(r.Registrations)
}

// List returns the registrations matching filter, newest first.
func (s *Service) List(ctx context.Context, filter report.Filter) (_ *ListResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanList, filterAttributes(filter)...)
	defer func() { span.End(err) }()

	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	result := &ListResult{Registrations: report.FilterBy(all, filter), Total: len(all)}
	span.SetAttributes(tracer.Int(tracer.AttrTotal, result.Total))
	return result, nil
}

func (s *Service) Get(ctx context.Context, registrationID id.RegistrationID) (_ *models.Registration, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanGet, tracer.String(tracer.AttrRegistrationID, registrationID.String()))
	defer func() { span.End(err) }()

	var registration *models.Registration
	err = s.timed("find", func() error {
		var findErr error
		registration, findErr = s.store.FindByID(ctx, registrationID)
		return findErr
	})
	if err != nil {
		return nil, s.storeFault(ctx, "find", err)
	}
	return registration, nil
}

// Update replaces every editable field of an existing registration with the
// validated input. The last writer wins.
func (s *Service) Update(ctx context.Context, registrationID id.RegistrationID, input *models.RegistrationInput) (_ *models.Registration, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanUpdate, tracer.String(tracer.AttrRegistrationID, registrationID.String()))
	defer func() { span.End(err) }()

	details, err := s.validate(ctx, span, input)
	if err != nil {
		s.incUpdate(metrics.OutcomeInvalid)
		return nil, err
	}

	var registration *models.Registration
	err = s.timed("find", func() error {
		var findErr error
		registration, findErr = s.store.FindByID(ctx, registrationID)
		return findErr
	})
	if err != nil {
		s.incUpdate(metrics.OutcomeFailed)
		return nil, s.storeFault(ctx, "find", err)
	}

	registration.Apply(details)
	if err := s.timed("update", func() error { return s.store.Update(ctx, registration) }); err != nil {
		s.incUpdate(metrics.OutcomeFailed)
		return nil, s.storeFault(ctx, "update", err)
	}

	s.incUpdate(metrics.OutcomeStored)
	s.logger.InfoContext(ctx, "registration updated",
		"registration_id", registrationID.String(),
		"actor", requestcontext.Actor(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, span, audit.EventRegistrationUpdated, registrationID.String(), "")
	return registration, nil
}

func (s *Service) Delete(ctx context.Context, registrationID id.RegistrationID) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanDelete, tracer.String(tracer.AttrRegistrationID, registrationID.String()))
	defer func() { span.End(err) }()

	if err := s.timed("delete", func() error { return s.store.Delete(ctx, registrationID) }); err != nil {
		return s.storeFault(ctx, "delete", err)
	}

	if s.metrics != nil {
		s.metrics.IncDeletion()
	}
	s.logger.InfoContext(ctx, "registration deleted",
		"registration_id", registrationID.String(),
		"actor", requestcontext.Actor(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, span, audit.EventRegistrationDeleted, registrationID.String(), "")
	return nil
}

// Summary aggregates every stored registration for the dashboard.
func (s *Service) Summary(ctx context.Context, zeros report.ZeroCounts) (_ *report.Summary, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSummary, tracer.Bool(tracer.AttrIncludeZero, bool(zeros)))
	defer func() { span.End(err) }()

	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	summary := report.Summarize(all, s.validator.Catalog(), zeros)
	return &summary, nil
}

// ExportResult is a CSV document ready to download.
type ExportResult struct {
	FileName string
	Content  []byte
	Rows     int
}

// Export encodes the registrations matching filter as CSV.
func (s *Service) Export(ctx context.Context, filter report.Filter) (_ *ExportResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanExport, filterAttributes(filter)...)
	defer func() { span.End(err) }()

	all, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	rows := report.FilterBy(all, filter)
	result := &ExportResult{
		FileName: export.FileName(requestcontext.Now(ctx)),
		Content:  s.encoder.Encode(rows),
		Rows:     len(rows),
	}
	span.SetAttributes(tracer.Int(tracer.AttrBytes, len(result.Content)))

	if s.metrics != nil {
		s.metrics.ObserveExport(result.Rows)
	}
	s.logger.InfoContext(ctx, "registrations exported",
		"rows", result.Rows,
		"actor", requestcontext.Actor(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, span, audit.EventRegistrationsExported, "", exportDetail(filter, result.Rows))
	return result, nil
}

func (s *Service) snapshot(ctx context.Context) ([]*models.Registration, error) {
	var all []*models.Registration
	err := s.timed("list", func() error {
		var listErr error
		all, listErr = s.store.List(ctx)
		return listErr
	})
	if err != nil {
		return nil, s.storeFault(ctx, "list", err)
	}
	return all, nil
}

func (s *Service) validate(ctx context.Context, span tracer.Span, input *models.RegistrationInput) (*models.Details, error) {
	details, err := s.validator.Validate(ctx, input)
	if err == nil {
		return details, nil
	}
	fields := dErrors.FieldsOf(err)
	span.AddEvent(tracer.EventValidationFailed, tracer.Int(tracer.AttrTotal, len(fields)))
	if s.metrics != nil {
		for _, f := range fields {
			s.metrics.IncValidationError(f.Field)
		}
	}
	return nil, err
}

// storeFault turns a store error into the error callers see. Unknown ids
// become not_found; anything else is logged with its cause and surfaced as a
// generic retryable failure.
func (s *Service) storeFault(ctx context.Context, operation string, err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, MsgNotFound)
	}
	s.logger.ErrorContext(ctx, "registration store failure",
		"operation", operation,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, MsgRetryLater)
}

func (s *Service) timed(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	if s.metrics != nil {
		s.metrics.ObserveStoreLatency(operation, time.Since(start).Seconds())
	}
	return err
}

func (s *Service) emitAudit(ctx context.Context, span tracer.Span, action audit.AuditEvent, subject, detail string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Actor:     requestcontext.Actor(ctx),
		Action:    string(action),
		Subject:   subject,
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(action),
			"error", err,
		)
		return
	}
	span.AddEvent(tracer.EventAuditEmitted, tracer.String("audit.action", string(action)))
}

func (s *Service) incSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.IncSubmission(outcome)
	}
}

func (s *Service) incUpdate(outcome string) {
	if s.metrics != nil {
		s.metrics.IncUpdate(outcome)
	}
}

func filterAttributes(f report.Filter) []tracer.Attribute {
	attrs := []tracer.Attribute{tracer.Bool(tracer.AttrFiltered, !f.IsEmpty())}
	if f.Department != "" {
		attrs = append(attrs, tracer.String(tracer.AttrDepartment, f.Department))
	}
	if f.Day != nil {
		attrs = append(attrs, tracer.String(tracer.AttrDay, f.Day.String()))
	}
	return attrs
}

func exportDetail(f report.Filter, rows int) string {
	department := f.Department
	if department == "" {
		department = report.AllDepartments
	}
	day := "all"
	if f.Day != nil {
		day = f.Day.String()
	}
	return fmt.Sprintf("departamento=%s dia=%s linhas=%d", department, day, rows)
}
