// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used in production.
const DefaultHashCost = 12

// maxSecretBytes is bcrypt's input limit. Longer secrets are silently
// truncated, so two passwords that agree in their first 72 bytes verify as
// equal. This mirrors bcrypt's own behavior and is intentional.
const maxSecretBytes = 72

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted one-way hash of the password.
	Hash(password string) (string, error)

	// Verify reports whether the password matches the stored hash.
	// A malformed hash yields false, never an error.
	Verify(password, hash string) bool
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the production work factor.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: DefaultHashCost}
}

// NewBcryptHasherWithCost creates a BcryptHasher with a custom work factor.
// Tests use bcrypt.MinCost to keep hashing fast.
func NewBcryptHasherWithCost(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces a salted bcrypt hash of the password.
// Empty passwords are not rejected here; schema validation owns that.
func (h *BcryptHasher) Hash(password string) (string, error) {
	sum, err := bcrypt.GenerateFromPassword(truncateSecret(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	return string(sum), nil
}

// Verify reports whether the password matches the stored bcrypt hash.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncateSecret(password)) == nil
}

// truncateSecret limits the secret to bcrypt's 72-byte input window.
func truncateSecret(password string) []byte {
	b := []byte(password)
	if len(b) > maxSecretBytes {
		b = b[:maxSecretBytes]
	}
	return b
}

// Compile-time interface check.
var _ PasswordHasher = (*BcryptHasher)(nil)
