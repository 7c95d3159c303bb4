// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package auth provides authentication and authorization primitives for Inkwell.
//
// # Components
//
//   - PasswordHasher / BcryptHasher - one-way credential hashing and verification
//   - TokenService - issues and verifies signed, time-limited bearer tokens
//   - IdentityResolver - turns a presented token into an authenticated Account
//   - AuthorizeMutation - the single-owner check guarding resource mutation
//   - Service - the request-level login, registration, and password-reset flows
//
// Tokens are stateless and self-contained: nothing is stored server-side, so
// a token stays valid until its expiry. Every token carries a purpose claim
// (session or password_reset) and verification requires the expected purpose,
// so a reset link cannot double as a session credential.
//
// Services are created with New* constructors that validate dependencies.
package auth
