// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Token purposes. A token issued for one purpose never verifies for another.
const (
	PurposeSession       = "session"
	PurposePasswordReset = "password_reset"
)

// Claims is the token payload: the standard registered claims plus the
// purpose the token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

// TokenService issues and verifies signed, time-limited bearer tokens.
// The signing secret and algorithm come from startup configuration and are
// immutable for the life of the process.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
}

// NewTokenService creates a TokenService for the given secret and algorithm
// identifier (e.g. "HS256"). Only HMAC algorithms are accepted; a missing
// secret or unknown algorithm is a fatal configuration error.
func NewTokenService(secret []byte, algorithm string) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, oops.Code("CONFIG_INVALID").Errorf("signing secret is required")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("algorithm", algorithm).
			Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, oops.Code("CONFIG_INVALID").
			With("algorithm", algorithm).
			Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}
	return &TokenService{secret: secret, method: method}, nil
}

// Issue produces a compact signed token carrying the subject account id,
// the purpose, and an expiry ttl from now.
func (s *TokenService) Issue(subjectID int64, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: purpose,
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_ISSUE_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks signature, expiry, and purpose, and returns the subject
// account id. Every failure mode collapses into ErrInvalidToken so callers
// cannot distinguish a bad signature from an expired or malformed token.
func (s *TokenService) Verify(token, wantPurpose string) (int64, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	if claims.Purpose != wantPurpose {
		return 0, ErrInvalidToken
	}

	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || subjectID <= 0 {
		return 0, ErrInvalidToken
	}
	return subjectID, nil
}
