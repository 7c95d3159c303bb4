// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/pkg/errutil"
)

func newTokenService(t *testing.T, secret string) *auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenService([]byte(secret), "HS256")
	require.NoError(t, err)
	return svc
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name      string
		secret    []byte
		algorithm string
		wantErr   bool
	}{
		{name: "HS256", secret: []byte("secret"), algorithm: "HS256", wantErr: false},
		{name: "HS512", secret: []byte("secret"), algorithm: "HS512", wantErr: false},
		{name: "empty secret", secret: nil, algorithm: "HS256", wantErr: true},
		{name: "unknown algorithm", secret: []byte("secret"), algorithm: "HS9000", wantErr: true},
		{name: "non-HMAC algorithm", secret: []byte("secret"), algorithm: "RS256", wantErr: true},
		{name: "none is rejected", secret: []byte("secret"), algorithm: "none", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewTokenService(tt.secret, tt.algorithm)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
		})
	}
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := newTokenService(t, "test-secret")

	t.Run("round trip", func(t *testing.T) {
		token, err := svc.Issue(42, auth.PurposeSession, time.Minute)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		subjectID, err := svc.Verify(token, auth.PurposeSession)
		require.NoError(t, err)
		assert.Equal(t, int64(42), subjectID)
	})

	t.Run("expired token fails", func(t *testing.T) {
		token, err := svc.Issue(42, auth.PurposeSession, -time.Second)
		require.NoError(t, err)

		_, err = svc.Verify(token, auth.PurposeSession)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		other := newTokenService(t, "other-secret")
		token, err := other.Issue(42, auth.PurposeSession, time.Minute)
		require.NoError(t, err)

		_, err = svc.Verify(token, auth.PurposeSession)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("purpose mismatch fails", func(t *testing.T) {
		token, err := svc.Issue(42, auth.PurposePasswordReset, time.Minute)
		require.NoError(t, err)

		_, err = svc.Verify(token, auth.PurposeSession)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)

		// And vice versa: a session token is not a reset token.
		token, err = svc.Issue(42, auth.PurposeSession, time.Minute)
		require.NoError(t, err)

		_, err = svc.Verify(token, auth.PurposePasswordReset)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		token, err := svc.Issue(42, auth.PurposeSession, time.Minute)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]

		_, err = svc.Verify(tampered, auth.PurposeSession)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("malformed token fails", func(t *testing.T) {
		for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
			_, err := svc.Verify(token, auth.PurposeSession)
			assert.ErrorIs(t, err, auth.ErrInvalidToken, "token %q", token)
		}
	})
}
