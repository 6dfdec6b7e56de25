package fakeapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

type tokenIssuer struct {
	key        []byte
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func newTokenIssuer() *tokenIssuer {
	return &tokenIssuer{
		key:        []byte(uuid.NewString()),
		ttl:        defaultAccessTokenTTL,
		refreshTTL: defaultRefreshTokenTTL,
		now:        time.Now,
	}
}

func (t *tokenIssuer) issue(username string) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub":  username,
		"type": "access",
		"iat":  now.Unix(),
		"exp":  now.Add(t.ttl).Unix(),
		"jti":  uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", errors.Wrap(err, "[tokenIssuer.issue] sign")
	}
	return signed, nil
}

// verify checks signature, expiry and token type and returns the subject.
func (t *tokenIssuer) verify(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.key, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", errors.Wrap(err, "[tokenIssuer.verify] parse")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("[tokenIssuer.verify] unexpected claims type")
	}
	if typ, _ := claims["type"].(string); typ != "access" {
		return "", errors.New("[tokenIssuer.verify] not an access token")
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.New("[tokenIssuer.verify] missing subject")
	}
	return subject, nil
}
