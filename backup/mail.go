package backup

import "net/smtp"

// DefaultSMTPAddr is the relay used when SMTPMailer.Addr is empty
const DefaultSMTPAddr = "localhost:25"

// Mailer delivers a prepared message
type Mailer interface {
	Send(from string, to []string, msg []byte) error
}

// SMTPMailer sends mail through an unauthenticated SMTP relay
type SMTPMailer struct {
	Addr string
}

// Send delivers msg through the relay
func (m SMTPMailer) Send(from string, to []string, msg []byte) error {
	addr := m.Addr
	if addr == "" {
		addr = DefaultSMTPAddr
	}
	return smtp.SendMail(addr, nil, from, to, msg)
}
