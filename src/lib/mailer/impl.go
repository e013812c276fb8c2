package mailer

import (
	"github.com/arslanhfz7-dot/taxi-reserve/src/config"
	"github.com/arslanhfz7-dot/taxi-reserve/src/lib"
)

// Sender is the outbound mail capability the dispatcher depends on. Tests
// substitute a recording fake; production uses the SMTP transport.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

type SMTPSender struct {
	FromName string
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	return lib.SendMail(&lib.SendMailInput{
		From:     config.MailFrom(),
		FromName: s.FromName,
		To:       []string{to},
		Subject:  subject,
		Body:     htmlBody,
		Html:     true,
	})
}

func NewSMTPSender() *SMTPSender {
	return &SMTPSender{FromName: "AppReserve"}
}
