// Package token issues and validates the HS256 bearer tokens carried by HR
// staff on the dashboard API.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	id "eventreg/pkg/domain"
	dErrors "eventreg/pkg/domain-errors"
	"eventreg/pkg/platform/middleware/auth"
	"eventreg/pkg/requestcontext"

	"github.com/golang-jwt/jwt/v5"
)

// StaffClaims are the claims embedded in a staff token.
type StaffClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Staff identifies who a token is issued to.
type Staff struct {
	ID    id.StaffID
	Email string
	Role  string
}

// Service handles staff token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
}

func NewService(signingKey, issuer, audience string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// Issue signs a token for staff. Issued-at is taken from the request-scoped clock.
func (s *Service) Issue(ctx context.Context, staff Staff) (string, error) {
	if staff.ID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "staff ID cannot be nil")
	}
	if staff.Role == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	now := requestcontext.Now(ctx)

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, StaffClaims{
		Email: staff.Email,
		Role:  staff.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staff.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        hex.EncodeToString(b),
		},
	})
	return newToken.SignedString(s.signingKey)
}

// ValidateToken verifies signature, algorithm, expiry, issuer and audience.
// Expired tokens are reported with CodeTokenExpired.
func (s *Service) ValidateToken(tokenString string) (*StaffClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeTokenExpired, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*StaffClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// MiddlewareAdapter exposes Service to the auth middleware.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.JWTClaims{
		StaffID: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
		JTI:     claims.ID,
	}, nil
}
