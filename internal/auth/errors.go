// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint.
var ErrConflict = errors.New("uniqueness conflict")

// Field-specific uniqueness violations. Both match errors.Is(err, ErrConflict).
var (
	ErrNameTaken  = fmt.Errorf("%w: name already taken", ErrConflict)
	ErrEmailTaken = fmt.Errorf("%w: email already taken", ErrConflict)
)

// ErrInvalidToken is the uniform failure for any token that does not verify:
// malformed, bad signature, wrong algorithm, expired, or wrong purpose.
// Callers must not learn which check failed.
var ErrInvalidToken = errors.New("invalid token")
