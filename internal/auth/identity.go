// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// IdentityResolver resolves a presented bearer token into the authenticated
// account. It is the sole gate for every protected route: a token that
// verifies but whose subject no longer exists still fails.
type IdentityResolver struct {
	tokens   *TokenService
	accounts AccountRepository
}

// NewIdentityResolver creates an IdentityResolver.
func NewIdentityResolver(tokens *TokenService, accounts AccountRepository) (*IdentityResolver, error) {
	if tokens == nil {
		return nil, oops.Errorf("token service is required")
	}
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	return &IdentityResolver{tokens: tokens, accounts: accounts}, nil
}

// Resolve verifies a session token and returns its account.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*Account, error) {
	return r.resolve(ctx, token, PurposeSession)
}

// ResolveReset verifies a password-reset token and returns its account.
func (r *IdentityResolver) ResolveReset(ctx context.Context, token string) (*Account, error) {
	return r.resolve(ctx, token, PurposePasswordReset)
}

func (r *IdentityResolver) resolve(ctx context.Context, token, purpose string) (*Account, error) {
	subjectID, err := r.tokens.Verify(token, purpose)
	if err != nil {
		return nil, oops.Code("AUTH_UNAUTHORIZED").Errorf("could not verify token")
	}

	account, err := r.accounts.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// A valid signature does not imply the subject still exists.
			return nil, oops.Code("AUTH_UNAUTHORIZED").Errorf("could not verify token")
		}
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}
	return account, nil
}
