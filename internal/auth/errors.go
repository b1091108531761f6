package auth

import "errors"

var (
	// ErrTokenMalformed indicates the token could not be parsed at all.
	ErrTokenMalformed = errors.New("auth: malformed token")
	// ErrSignatureInvalid indicates the token signature did not verify.
	ErrSignatureInvalid = errors.New("auth: invalid token signature")
	// ErrTokenExpired indicates the token is structurally valid but past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")
)
