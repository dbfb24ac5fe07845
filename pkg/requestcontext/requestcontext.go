// Package requestcontext carries request-scoped values (request id, client IP,
// authenticated staff member, request time) through context.Context without
// coupling packages to middleware.
package requestcontext

import (
	"context"
	"time"

	id "eventreg/pkg/domain"
)

type (
	contextKeyRequestID   struct{}
	contextKeyClientIP    struct{}
	contextKeyStaff       struct{}
	contextKeyRequestTime struct{}
)

// Staff is the authenticated dashboard user behind a request.
type Staff struct {
	ID    id.StaffID
	Email string
	Role  string
}

// WithRequestID stores the request identifier in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, requestID)
}

// RequestID returns the request identifier, or empty string when absent.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return v
	}
	return ""
}

// WithClientIP stores the caller's IP address in the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyClientIP{}, ip)
}

// ClientIP returns the caller's IP address, or empty string when absent.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyClientIP{}).(string); ok {
		return v
	}
	return ""
}

// WithStaff stores the authenticated staff member in the context.
func WithStaff(ctx context.Context, staff Staff) context.Context {
	return context.WithValue(ctx, contextKeyStaff{}, staff)
}

// StaffFrom returns the authenticated staff member, if any.
func StaffFrom(ctx context.Context) (Staff, bool) {
	staff, ok := ctx.Value(contextKeyStaff{}).(Staff)
	return staff, ok
}

// Actor names whoever is acting in ctx for audit trails: the staff e-mail, or "public".
func Actor(ctx context.Context) string {
	if staff, ok := StaffFrom(ctx); ok && staff.Email != "" {
		return staff.Email
	}
	return "public"
}

// WithTime injects a specific time into a context.
// Useful for service tests and CLI commands that bypass the HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
