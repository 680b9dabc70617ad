package mailer

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Mailer delivers outbound notifications. Delivery is best-effort: the
// password-reset flow swallows any error it returns.
type Mailer interface {
	SendPasswordReset(to, resetURL string) error
}

// SMTPMailer sends mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *zap.Logger
}

func NewSMTPMailer(host string, port int, username, password, from string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
	}
}

func (m *SMTPMailer) SendPasswordReset(to, resetURL string) error {
	if m.host == "" {
		m.logger.Debug("Email host not configured, skipping reset mail", zap.String("to", to))
		return nil
	}

	body := "You requested a password reset.\r\n\r\n" +
		"Use this link to set a new password: " + resetURL + "\r\n\r\n" +
		"If you did not request this, you can ignore this email.\r\n"
	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: Password reset for Pretium Investment\r\n" +
		"\r\n" + body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	return smtp.SendMail(addr, auth, m.from, []string{to}, msg)
}
