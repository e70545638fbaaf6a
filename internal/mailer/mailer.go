// Package mailer delivers a single draft over implicit-TLS SMTP.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// client is the part of *smtp.Client the sender uses.
type client interface {
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

type dialFunc func(ctx context.Context, addr string, tlsConfig *tls.Config) (client, error)

// Sender submits one message per Send call. It never retries.
type Sender struct {
	config Config
	auth   smtp.Auth
	dial   dialFunc
	now    func() time.Time
}

func NewSender(config Config) *Sender {
	return &Sender{
		config: config,
		auth:   smtp.PlainAuth("", config.Username, config.Password, config.Host),
		dial:   dialTLS,
		now:    time.Now,
	}
}

// Send opens an encrypted connection, authenticates and transmits subject and body.
// The connection is closed before Send returns, whatever the outcome.
func (s *Sender) Send(ctx context.Context, subject, body string) error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	msg, err := buildMessage(s.config.From, s.config.To, subject, body, s.now())
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	c, err := s.dial(ctx, addr, &tls.Config{ServerName: s.config.Host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	defer func() { _ = c.Close() }()

	if err := c.Auth(s.auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Mail(s.config.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(s.config.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return c.Quit()
}

func dialTLS(ctx context.Context, addr string, tlsConfig *tls.Config) (client, error) {
	dialer := &tls.Dialer{Config: tlsConfig}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c, err := smtp.NewClient(conn, tlsConfig.ServerName)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

func buildMessage(from, to, subject, body string, date time.Time) ([]byte, error) {
	var buf bytes.Buffer

	headers := []string{
		"From: " + sanitizeHeader(from),
		"To: " + sanitizeHeader(to),
		"Subject: " + mime.QEncoding.Encode("utf-8", sanitizeHeader(subject)),
		"Date: " + date.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Transfer-Encoding: quoted-printable",
	}
	for _, h := range headers {
		buf.WriteString(h)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	body = strings.ReplaceAll(body, "\r\n", "\n")
	if _, err := qp.Write([]byte(strings.ReplaceAll(body, "\n", "\r\n"))); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}
