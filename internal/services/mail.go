package services

import (
	"context"
	"errors"

	"gopkg.in/gomail.v2"
)

// Mail is a single outbound HTML message.
type Mail struct {
	To       string
	ReplyTo  string
	FromName string
	Subject  string
	HTML     string
}

// Mailer delivers outbound mail.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// SMTPMailer sends through an authenticated SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, mail Mail) error {
	if m.from == "" || m.dialer.Username == "" {
		return errors.New("smtp credentials not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	if mail.FromName != "" {
		msg.SetAddressHeader("From", m.from, mail.FromName)
	} else {
		msg.SetHeader("From", m.from)
	}
	msg.SetHeader("To", mail.To)
	if mail.ReplyTo != "" {
		msg.SetHeader("Reply-To", mail.ReplyTo)
	}
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/html", mail.HTML)

	return m.dialer.DialAndSend(msg)
}
