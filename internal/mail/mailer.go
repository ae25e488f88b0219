// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

// Package mail provides the outbound mail transport.
package mail

import (
	"context"
	"errors"

	"github.com/samber/oops"
	gomail "github.com/wneessen/go-mail"
)

// ErrDelivery is returned when the outbound relay rejects or drops a
// message (connection or authentication failure included).
var ErrDelivery = errors.New("mail delivery failed")

// Config holds SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail over an SMTP relay.
type SMTPMailer struct {
	cfg Config
}

// NewSMTPMailer creates an SMTPMailer for the given relay.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg}, nil
}

// Send dispatches a plain-text message. Every failure wraps ErrDelivery so
// callers can distinguish the transport failure domain from store errors.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return oops.Code("MAIL_INVALID_FROM").
			With("from", m.cfg.From).
			Wrapf(ErrDelivery, "invalid from address: %v", err)
	}
	if err := msg.To(to); err != nil {
		return oops.Code("MAIL_INVALID_TO").
			With("to", to).
			Wrapf(ErrDelivery, "invalid recipient address: %v", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{gomail.WithPort(m.cfg.Port)}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return oops.Code("MAIL_CLIENT_FAILED").
			With("host", m.cfg.Host).
			Wrapf(ErrDelivery, "create smtp client: %v", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("host", m.cfg.Host).
			With("to", to).
			Wrapf(ErrDelivery, "send: %v", err)
	}
	return nil
}
