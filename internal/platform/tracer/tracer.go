// Package tracer is a thin span abstraction over OpenTelemetry so services can
// trace their operations without importing otel APIs directly.
//
// Implementations:
//   - NoopTracer: tests
//   - OTelTracer: the global OpenTelemetry provider
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Span tracks one operation. End must be called exactly once.
type Span interface {
	// End completes the span and marks it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer starts spans. Implementations must be safe for concurrent use.
//
//	ctx, span := t.Start(ctx, tracer.SpanSubmit, tracer.String(tracer.AttrDepartment, "TI"))
//	defer func() { span.End(err) }()
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashEmail returns a short SHA-256 digest of the normalised address so
// traces can correlate one attendee without carrying the address itself.
func HashEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:8])
}

// Span names.
const (
	SpanSubmit  = "registration.submit"
	SpanList    = "registration.list"
	SpanGet     = "registration.get"
	SpanUpdate  = "registration.update"
	SpanDelete  = "registration.delete"
	SpanSummary = "registration.summary"
	SpanExport  = "registration.export"
)

// Attribute keys.
const (
	AttrRegistrationID = "registration.id"
	AttrEmailHash      = "registration.email_hash"
	AttrDepartment     = "registration.department"
	AttrDay            = "registration.day"
	AttrFiltered       = "registration.filtered"
	AttrTotal          = "registration.total"
	AttrIncludeZero    = "report.include_zero"
	AttrBytes          = "export.bytes"
)

// Event names.
const (
	EventValidationFailed = "validation.failed"
	EventAuditEmitted     = "audit.emitted"
)
