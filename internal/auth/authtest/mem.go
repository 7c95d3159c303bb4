// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package authtest provides in-memory fakes for the auth package's
// collaborator interfaces.
package authtest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/mail"
)

// MemAccountRepository is an in-memory auth.AccountRepository. Errors can be
// injected per method to exercise failure paths.
type MemAccountRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*auth.Account

	CreateErr         error
	GetByIDErr        error
	GetByNameErr      error
	GetByEmailErr     error
	UpdatePasswordErr error
}

var _ auth.AccountRepository = (*MemAccountRepository)(nil)

func NewMemAccountRepository() *MemAccountRepository {
	return &MemAccountRepository{
		nextID: 1,
		byID:   make(map[int64]*auth.Account),
	}
}

// Seed inserts an account directly, bypassing uniqueness checks, and returns
// it with its assigned ID.
func (r *MemAccountRepository) Seed(account auth.Account) *auth.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.ID = r.nextID
	r.nextID++
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	r.byID[account.ID] = &account
	return &account
}

func (r *MemAccountRepository) Create(_ context.Context, account *auth.Account) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Name == account.Name {
			return auth.ErrNameTaken
		}
		if strings.EqualFold(existing.Email, account.Email) {
			return auth.ErrEmailTaken
		}
	}

	account.ID = r.nextID
	r.nextID++
	account.CreatedAt = time.Now().UTC()

	stored := *account
	r.byID[account.ID] = &stored
	return nil
}

func (r *MemAccountRepository) GetByID(_ context.Context, id int64) (*auth.Account, error) {
	if r.GetByIDErr != nil {
		return nil, r.GetByIDErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *MemAccountRepository) GetByName(_ context.Context, name string) (*auth.Account, error) {
	if r.GetByNameErr != nil {
		return nil, r.GetByNameErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.byID {
		if account.Name == name {
			copied := *account
			return &copied, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *MemAccountRepository) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	if r.GetByEmailErr != nil {
		return nil, r.GetByEmailErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.byID {
		if strings.EqualFold(account.Email, email) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *MemAccountRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	if r.UpdatePasswordErr != nil {
		return r.UpdatePasswordErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	account.PasswordHash = passwordHash
	return nil
}

// RecordingDispatcher is a mail.Dispatcher that records every message and
// optionally fails with Err.
type RecordingDispatcher struct {
	mu   sync.Mutex
	sent []mail.Message

	Err error
}

var _ mail.Dispatcher = (*RecordingDispatcher)(nil)

func (d *RecordingDispatcher) Send(_ context.Context, msg mail.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sent = append(d.sent, msg)
	if d.Err != nil {
		return d.Err
	}
	return nil
}

// Sent returns a copy of the recorded messages.
func (d *RecordingDispatcher) Sent() []mail.Message {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]mail.Message, len(d.sent))
	copy(out, d.sent)
	return out
}
