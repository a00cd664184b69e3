package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"

	gomail "gopkg.in/gomail.v2"
)

// SMTPEmailSender implements EmailSender over SMTP.
type SMTPEmailSender struct {
	Dialer *gomail.Dialer
	From   string
}

// NewSMTPEmailSender configures an SMTP-backed sender.
func NewSMTPEmailSender(host string, port int, username, password, from string) *SMTPEmailSender {
	return &SMTPEmailSender{
		Dialer: gomail.NewDialer(host, port, username, password),
		From:   from,
	}
}

// Send delivers one plain-text reminder email. SMTP 5xx replies are
// permanent; everything else (connect failures, 4xx) is retryable.
func (s *SMTPEmailSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return &RetryableError{Err: err}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.Dialer.DialAndSend(m); err != nil {
		var proto *textproto.Error
		if errors.As(err, &proto) && proto.Code >= 500 {
			return &PermanentError{Err: fmt.Errorf("email to %s rejected: %w", to, err)}
		}
		return &RetryableError{Err: fmt.Errorf("email to %s: %w", to, err)}
	}
	return nil
}
