package services

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"
)

// Sender delivers a single email message.
type Sender interface {
	Send(to, subject, body string) error
	Reachable() bool
}

// Mailer sends mail over SMTP with implicit TLS (port 465 style).
type Mailer struct {
	host     string
	port     string
	username string
	password string
}

func NewMailer(host, port, username, password string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

// Send delivers one plain-text message. The authenticated account is the
// envelope sender.
func (m *Mailer) Send(to, subject, body string) error {
	from := m.username
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	serverAddr := m.host + ":" + m.port

	tlsConfig := &tls.Config{
		ServerName: m.host,
	}

	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

// Reachable reports whether the SMTP endpoint accepts TLS connections.
func (m *Mailer) Reachable() bool {
	dialer := &net.Dialer{Timeout: 3 * time.Second}
	conn, err := tls.DialWithDialer(dialer, "tcp", m.host+":"+m.port, &tls.Config{ServerName: m.host})
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
