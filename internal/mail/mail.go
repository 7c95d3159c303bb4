// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package mail provides outbound email delivery for Inkwell.
//
// Handlers invoke the Dispatcher best-effort: a delivery failure is logged
// and swallowed and never changes the outcome of the triggering operation.
package mail

import (
	"context"
	"log/slog"
)

// Template names for the messages Inkwell sends.
const (
	TemplateRegistration  = "registration"
	TemplatePasswordReset = "password_reset"
)

// Message describes a single outbound email.
type Message struct {
	Template string
	To       string
	ToName   string
	Subject  string
	// Data is passed to the body template.
	Data map[string]any
}

// Dispatcher delivers messages to a recipient.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// NoopDispatcher logs messages instead of delivering them. Used when no
// SMTP host is configured (development and tests).
type NoopDispatcher struct {
	logger *slog.Logger
}

// NewNoopDispatcher creates a NoopDispatcher. A nil logger uses the default.
func NewNoopDispatcher(logger *slog.Logger) *NoopDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopDispatcher{logger: logger}
}

// Send logs the message and reports success.
func (d *NoopDispatcher) Send(_ context.Context, msg Message) error {
	d.logger.Info("mail delivery skipped: no SMTP host configured",
		"template", msg.Template,
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

// Compile-time interface check.
var _ Dispatcher = (*NoopDispatcher)(nil)
