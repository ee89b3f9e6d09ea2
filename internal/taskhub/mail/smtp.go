package mail

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// SMTPGateway sends through an SMTP relay with PLAIN auth (STARTTLS is
// negotiated by net/smtp when the server offers it).
type SMTPGateway struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// sendMail is smtp.SendMail; replaced in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPGateway returns a gateway for host:port. Port 0 means 587.
func NewSMTPGateway(host string, port int, username, password, from string) *SMTPGateway {
	if port == 0 {
		port = 587
	}
	return &SMTPGateway{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		sendMail: smtp.SendMail,
	}
}

func (g *SMTPGateway) Send(ctx context.Context, to, subject, htmlBody string) error {
	if g == nil || g.Host == "" || g.From == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if g.Username != "" {
		auth = smtp.PlainAuth("", g.Username, g.Password, g.Host)
	}

	addr := net.JoinHostPort(g.Host, strconv.Itoa(g.Port))
	send := g.sendMail
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(addr, auth, g.From, []string{to}, buildMessage(g.From, to, subject, htmlBody, time.Now())); err != nil {
		return fmt.Errorf("mail: smtp send: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
