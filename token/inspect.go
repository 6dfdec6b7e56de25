package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/web-analyzer-client/internal/errors"
)

// Details describes what an access token claims about itself. The values are
// read without verifying the signature and are informational only; the
// server stays authoritative for validity and expiry.
type Details struct {
	Subject   string     `json:"sub,omitempty"`
	Issuer    string     `json:"iss,omitempty"`
	IssuedAt  *time.Time `json:"iat,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty"`
	Type      string     `json:"type,omitempty"` // access or refresh, when the server sets it
}

// Expired reports whether the token claims an expiry before now. Tokens
// without an exp claim never report as expired.
func (d Details) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && now.After(*d.ExpiresAt)
}

// Inspect decodes the claims of a JWT access token without verifying it.
// Opaque (non-JWT) tokens return ErrInvalidToken.
func Inspect(rawToken string) (Details, error) {
	if strings.TrimSpace(rawToken) == "" {
		return Details{}, apperrors.ErrInvalidToken
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return Details{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "[token Inspect] %v", err)
	}

	var d Details
	d.Subject, _ = claims.GetSubject()
	d.Issuer, _ = claims.GetIssuer()
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		d.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		d.ExpiresAt = &t
	}
	if typ, ok := claims["type"].(string); ok {
		d.Type = typ
	}
	return d, nil
}
