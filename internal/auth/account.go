// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/mail"
	"strings"
	"time"

	"github.com/samber/oops"
)

// apiKeyBytes is the entropy of a generated API key. 20 bytes = 40 hex chars.
const apiKeyBytes = 20

// Account represents a registered account.
// PasswordHash is never the plaintext secret; APIKey is an opaque credential
// generated at registration and unused elsewhere in the current scope.
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	APIKey       string
	CreatedAt    time.Time
}

// ValidateRegistration validates registration input. The wire schema layer
// owns full validation; this is the minimal set the core depends on.
func ValidateRegistration(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return oops.Code("VALIDATION_FAILED").Errorf("name cannot be empty")
	}
	if password == "" {
		return oops.Code("VALIDATION_FAILED").Errorf("password cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return oops.Code("VALIDATION_FAILED").With("email", email).Errorf("invalid email address")
	}
	return nil
}

// NewAPIKey generates an opaque random API key.
func NewAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("AUTH_APIKEY_FAILED").Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account and fills in the store-assigned ID and
	// CreatedAt. A uniqueness violation surfaces as ErrNameTaken,
	// ErrEmailTaken, or the generic ErrConflict.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// GetByName retrieves an account by exact name match.
	GetByName(ctx context.Context, name string) (*Account, error)

	// GetByEmail retrieves an account by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// UpdatePassword replaces only the password hash for an account.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
