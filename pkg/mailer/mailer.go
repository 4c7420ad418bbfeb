package mailer

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
)

// Sender delivers a single message. Services depend on this interface so
// tests can stub delivery.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// LogSender logs instead of delivering; used when SMTP is not configured.
type LogSender struct{}

func (LogSender) Send(to, subject, htmlBody string) error {
	log.Printf("mail to %s: %s", to, subject)
	return nil
}

// Config holds SMTP settings, constructed once at startup.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Client sends mail over SMTP with STARTTLS.
type Client struct {
	config Config
}

func NewClient(config Config) *Client {
	if config.Port == 0 {
		config.Port = 587
	}
	return &Client{config: config}
}

func (c *Client) Send(to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("recipient must not be empty")
	}

	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		c.config.From, to, subject,
	)
	msg := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", c.config.Username, c.config.Password, c.config.Host)
	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)

	return c.sendWithTLS(addr, auth, []string{to}, msg)
}

func (c *Client) sendWithTLS(addr string, auth smtp.Auth, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(&tls.Config{ServerName: c.config.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth failed: %w", err)
	}

	if err = client.Mail(c.config.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	for _, recipient := range to {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to set recipient: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}

	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close message body: %w", err)
	}

	return client.Quit()
}
