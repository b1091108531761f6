package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Secret encodings accepted by DeriveKey.
const (
	SecretEncodingAuto   = "auto"
	SecretEncodingBase64 = "base64"
	SecretEncodingRaw    = "raw"
)

var base64Alphabet = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)

// DeriveKey turns the configured secret into HMAC key material. With the
// default "auto" encoding a secret made up entirely of base64-alphabet
// characters is decoded as base64 and anything else is used as raw bytes.
// The heuristic misclassifies plain secrets that happen to look like base64,
// so "base64" and "raw" can be set explicitly to pin the interpretation.
func DeriveKey(secret, encoding string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	switch encoding {
	case SecretEncodingAuto, "":
		if base64Alphabet.MatchString(secret) {
			key, err := base64.StdEncoding.DecodeString(secret)
			if err == nil {
				return key, nil
			}
		}
		return []byte(secret), nil
	case SecretEncodingBase64:
		key, err := base64.StdEncoding.DecodeString(secret)
		if err != nil {
			return nil, fmt.Errorf("auth: decode base64 secret: %w", err)
		}
		return key, nil
	case SecretEncodingRaw:
		return []byte(secret), nil
	}
	return nil, fmt.Errorf("auth: unsupported secret encoding %q", encoding)
}

// Claims is the payload carried inside an issued token.
type Claims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Identity reconstructs the caller identity from validated claims.
func (c *Claims) Identity() Identity {
	role, err := ParseRole(c.Role)
	if err != nil {
		role = Role(c.Role)
	}
	return Identity{
		Email:       c.Subject,
		UserID:      c.UserID,
		Role:        role,
		DisplayName: c.Name,
	}
}

// TokenService issues and validates HS256-signed bearer tokens. The signing
// key is derived once at startup and is safe for concurrent use.
type TokenService struct {
	key []byte
	now func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewTokenService constructs a TokenService around derived key material.
func NewTokenService(key []byte, opts ...TokenOption) (*TokenService, error) {
	if len(key) == 0 {
		return nil, errors.New("auth: signing key is required")
	}
	s := &TokenService{key: key, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for the given identity. A zero ttl produces a token
// that is already expired; negative ttl is rejected.
func (s *TokenService) Issue(identity Identity, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(identity.Email) == "" {
		return "", time.Time{}, errors.New("auth: identity email is required")
	}
	if !identity.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("auth: invalid role %q", identity.Role)
	}
	if ttl < 0 {
		return "", time.Time{}, errors.New("auth: ttl must not be negative")
	}

	now := s.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID: identity.UserID,
		Role:   string(identity.Role),
		Name:   identity.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a token string. It returns ErrTokenMalformed,
// ErrSignatureInvalid or ErrTokenExpired; the caller decides what a failure
// means for the request. A token is valid only while issuedAt <= now < expiresAt.
func (s *TokenService) Validate(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenMalformed
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrSignatureInvalid
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenMalformed
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}
	// The library treats now == expiresAt as still valid; the contract here
	// is a half-open interval, so check the boundary explicitly.
	if !s.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
