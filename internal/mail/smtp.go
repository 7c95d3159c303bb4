// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Retry policy for transient SMTP failures.
const (
	retryBase = 500 * time.Millisecond
	retryMax  = 3
)

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPDispatcher delivers messages through an SMTP relay, rendering bodies
// from the embedded HTML templates.
type SMTPDispatcher struct {
	cfg       SMTPConfig
	templates *template.Template
	// sendMail is swapped in tests to avoid dialing a relay.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPDispatcher creates an SMTPDispatcher.
func NewSMTPDispatcher(cfg SMTPConfig) (*SMTPDispatcher, error) {
	if cfg.Host == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("smtp from address is required")
	}
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, oops.Code("MAIL_TEMPLATES_FAILED").Wrap(err)
	}
	return &SMTPDispatcher{
		cfg:       cfg,
		templates: tmpl,
		sendMail:  smtp.SendMail,
	}, nil
}

// Send renders the message body and delivers it, retrying transient failures
// with bounded exponential backoff.
func (d *SMTPDispatcher) Send(ctx context.Context, msg Message) error {
	raw, err := d.render(msg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}

	backoff := retry.WithMaxRetries(retryMax, retry.NewExponential(retryBase))
	err = retry.Do(ctx, backoff, func(_ context.Context) error {
		if sendErr := d.sendMail(addr, auth, d.cfg.From, []string{msg.To}, raw); sendErr != nil {
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	if err != nil {
		return oops.Code("MAIL_DELIVERY_FAILED").
			With("template", msg.Template).
			With("to", msg.To).
			Wrap(err)
	}
	return nil
}

// render builds the full RFC 5322 message: headers plus the HTML body from
// the template named by msg.Template.
func (d *SMTPDispatcher) render(msg Message) ([]byte, error) {
	var body bytes.Buffer
	if err := d.templates.ExecuteTemplate(&body, msg.Template+".html", msg.Data); err != nil {
		return nil, oops.Code("MAIL_RENDER_FAILED").
			With("template", msg.Template).
			Wrap(err)
	}

	var buf bytes.Buffer
	from := d.cfg.From
	if d.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", d.cfg.FromName), d.cfg.From)
	}
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.Write(body.Bytes())

	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ Dispatcher = (*SMTPDispatcher)(nil)
