// Package mailer sends generated documents by email over plain SMTP.
package mailer

import (
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/seiyar26/ppt-template-manager/internal/config"
)

type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.User,
		password: cfg.Password,
		from:     cfg.From,
	}
}

// Send delivers a single message with one attachment.
func (m *SMTPMailer) Send(to, subject, body, attachmentName string, attachment []byte) error {
	if m.host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	message := m.buildMessage(to, subject, body, attachmentName, attachment)

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) buildMessage(to, subject, body, attachmentName string, attachment []byte) []byte {
	const boundary = "ppt-template-manager-boundary"

	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: multipart/mixed; boundary=" + boundary + "\r\n\r\n")

	msg.WriteString("--" + boundary + "\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body + "\r\n\r\n")

	msg.WriteString("--" + boundary + "\r\n")
	msg.WriteString("Content-Type: application/octet-stream\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString("Content-Disposition: attachment; filename=\"" + attachmentName + "\"\r\n\r\n")

	encoded := base64.StdEncoding.EncodeToString(attachment)
	// RFC 2045 line length limit.
	for len(encoded) > 76 {
		msg.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	msg.WriteString(encoded + "\r\n")
	msg.WriteString("--" + boundary + "--\r\n")

	return []byte(msg.String())
}
