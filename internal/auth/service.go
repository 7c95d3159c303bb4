// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/samber/oops"

	"github.com/inkwell/inkwell/internal/mail"
	"github.com/inkwell/inkwell/internal/observability"
	"github.com/inkwell/inkwell/pkg/errutil"
)

// Default token validity windows, used when the config leaves them zero.
const (
	DefaultSessionTTL = 30 * time.Minute
	DefaultResetTTL   = 15 * time.Minute
)

// dummyPasswordHash is used when an account doesn't exist so that login still
// performs a full-cost bcrypt verification and response time stays uniform.
// This is NOT a real credential - it is a fake hash that will never match.
//
//nolint:gosec // G101: intentionally fake hash for timing uniformity, not a credential.
const dummyPasswordHash = "$2a$12$K8pQm8FILCEzL1W0xFHldOZJmVN3c9bVEkS5eTzYyVKkPmVkQFC3u"

// TokenPair is the login result: a bearer access token.
type TokenPair struct {
	AccessToken string
	TokenType   string
}

// ServiceConfig carries the token validity windows and the base URL used to
// build password-reset links.
type ServiceConfig struct {
	SessionTTL   time.Duration
	ResetTTL     time.Duration
	ResetBaseURL string
}

// Service provides the request-level authentication flows:
//   - Login: verify credentials and mint a session token
//   - Register: create accounts with uniqueness checks
//   - RequestPasswordReset / ConfirmPasswordReset: the reset flow
//   - CurrentAccount: resolve the authenticated account for a token
type Service struct {
	accounts   AccountRepository
	hasher     PasswordHasher
	tokens     *TokenService
	identity   *IdentityResolver
	dispatcher mail.Dispatcher
	logger     *slog.Logger

	sessionTTL   time.Duration
	resetTTL     time.Duration
	resetBaseURL string
}

// NewService constructs a Service using the default logger.
func NewService(accounts AccountRepository, hasher PasswordHasher, tokens *TokenService, dispatcher mail.Dispatcher, cfg ServiceConfig) (*Service, error) {
	return NewServiceWithLogger(accounts, hasher, tokens, dispatcher, cfg, slog.Default())
}

// NewServiceWithLogger constructs a Service with an explicit logger.
func NewServiceWithLogger(accounts AccountRepository, hasher PasswordHasher, tokens *TokenService, dispatcher mail.Dispatcher, cfg ServiceConfig, logger *slog.Logger) (*Service, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token service is required")
	}
	if dispatcher == nil {
		return nil, oops.Errorf("mail dispatcher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}

	identity, err := NewIdentityResolver(tokens, accounts)
	if err != nil {
		return nil, err
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = DefaultResetTTL
	}

	return &Service{
		accounts:     accounts,
		hasher:       hasher,
		tokens:       tokens,
		identity:     identity,
		dispatcher:   dispatcher,
		logger:       logger,
		sessionTTL:   cfg.SessionTTL,
		resetTTL:     cfg.ResetTTL,
		resetBaseURL: cfg.ResetBaseURL,
	}, nil
}

// Identity returns the resolver protecting the authenticated routes.
func (s *Service) Identity() *IdentityResolver {
	return s.identity
}

// Login verifies a username/password pair and mints a session token.
// An unknown username and a wrong password fail with the same
// undifferentiated error, and a dummy hash is verified when the account is
// absent so response time does not reveal which case occurred.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	account, lookupErr := s.accounts.GetByName(ctx, username)

	targetHash := dummyPasswordHash
	accountExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by name").
				Wrap(lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		accountExists = true
	}

	valid := s.hasher.Verify(password, targetHash)
	if !accountExists || !valid {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid user credentials")
	}

	token, err := s.tokens.Issue(account.ID, PurposeSession, s.sessionTTL)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue session token").
			Wrap(err)
	}

	return &TokenPair{AccessToken: token, TokenType: "bearer"}, nil
}

// Register creates a new account. Name and email uniqueness are pre-checked
// sequentially; a uniqueness violation raised by the store on insert (two
// concurrent registrations racing past the pre-checks) is translated to the
// same conflict outcome. The registration email is best-effort: a delivery
// failure is logged and swallowed.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Account, error) {
	if err := ValidateRegistration(name, email, password); err != nil {
		return nil, err
	}

	if _, err := s.accounts.GetByName(ctx, name); err == nil {
		return nil, oops.Code("ACCOUNT_NAME_TAKEN").
			With("name", name).
			Errorf("there already is an account by that name")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "get account by name").
			Wrap(err)
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, oops.Code("ACCOUNT_EMAIL_TAKEN").
			With("email", email).
			Errorf("there already is an account by that email")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	apiKey, err := NewAPIKey()
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "generate api key").
			Wrap(err)
	}

	account := &Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		APIKey:       apiKey,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		// Pre-checks are read-then-write with no lock; the store's own
		// uniqueness constraint is the authoritative check under races.
		switch {
		case errors.Is(err, ErrNameTaken):
			return nil, oops.Code("ACCOUNT_NAME_TAKEN").
				With("name", name).
				Errorf("there already is an account by that name")
		case errors.Is(err, ErrEmailTaken):
			return nil, oops.Code("ACCOUNT_EMAIL_TAKEN").
				With("email", email).
				Errorf("there already is an account by that email")
		case errors.Is(err, ErrConflict):
			return nil, oops.Code("ACCOUNT_CONFLICT").
				Errorf("an account with those details already exists")
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}

	s.sendBestEffort(ctx, mail.Message{
		Template: mail.TemplateRegistration,
		To:       account.Email,
		ToName:   account.Name,
		Subject:  "Registration successful",
		Data: map[string]any{
			"Title": "Registration successful",
			"Name":  account.Name,
		},
	})

	return account, nil
}

// RequestPasswordReset issues a short-lived reset token for the account
// matching the email, builds the reset link, and sends it best-effort.
// An unknown email fails with a not-found outcome (see the interface table);
// a failed delivery does not.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("ACCOUNT_NOT_FOUND").
				Errorf("your details not found, invalid email address")
		}
		return oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}

	token, err := s.tokens.Issue(account.ID, PurposePasswordReset, s.resetTTL)
	if err != nil {
		return oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "issue reset token").
			Wrap(err)
	}

	resetLink := fmt.Sprintf("%s?token=%s", s.resetBaseURL, url.QueryEscape(token))

	s.sendBestEffort(ctx, mail.Message{
		Template: mail.TemplatePasswordReset,
		To:       account.Email,
		ToName:   account.Name,
		Subject:  "Password Reset",
		Data: map[string]any{
			"Title":     "Password Reset",
			"Name":      account.Name,
			"ResetLink": resetLink,
		},
	})

	return nil
}

// ConfirmPasswordReset verifies a reset token and replaces the account's
// password hash unconditionally. The hash write is the last state-changing
// step; an invalid or expired token leaves the stored hash untouched.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return oops.Code("VALIDATION_FAILED").Errorf("password cannot be empty")
	}

	account, err := s.identity.ResolveReset(ctx, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_RESET_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_UNAUTHORIZED").Errorf("could not verify token")
		}
		return oops.Code("AUTH_RESET_FAILED").
			With("operation", "update password").
			Wrap(err)
	}
	return nil
}

// CurrentAccount resolves the authenticated account for a session token.
func (s *Service) CurrentAccount(ctx context.Context, token string) (*Account, error) {
	return s.identity.Resolve(ctx, token)
}

// sendBestEffort delivers a message, logging and swallowing any failure.
// Delivery never changes the outcome of the triggering operation.
func (s *Service) sendBestEffort(ctx context.Context, msg mail.Message) {
	if err := s.dispatcher.Send(ctx, msg); err != nil {
		observability.RecordMailDeliveryFailure(msg.Template)
		errutil.LogError(s.logger, "mail delivery failed (ignored)", err)
	}
}
