// Package mail delivers contact form submissions.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/caarlos0/env/v11"

	"github.com/Zachkp/portfolio/internal/contact"
)

var ErrNotConfigured = errors.New("mail: SMTP credentials not configured")

// SMTPConfig is read from the environment.
type SMTPConfig struct {
	Host string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port string `env:"SMTP_PORT" envDefault:"587"`
	User string `env:"SMTP_USER"`
	Pass string `env:"SMTP_PASS"`
	To   string `env:"TO_EMAIL"`
}

func LoadSMTPConfig() (SMTPConfig, error) {
	var cfg SMTPConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse smtp env: %w", err)
	}
	if cfg.To == "" {
		cfg.To = cfg.User
	}
	return cfg, nil
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends each submission as a plain-text mail to the site owner.
type SMTP struct {
	cfg  SMTPConfig
	send sendFunc
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTP) Submit(ctx context.Context, f contact.Form) error {
	if s.cfg.User == "" || s.cfg.Pass == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	errc := make(chan error, 1)
	go func() {
		errc <- s.send(s.cfg.Host+":"+s.cfg.Port, auth, s.cfg.User, []string{s.cfg.To}, s.compose(f))
	}()
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTP) compose(f contact.Form) []byte {
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Message:
%s

---
Sent from your portfolio contact form
`, f.Name, f.Email, f.Subject, f.Message)

	return []byte("To: " + s.cfg.To + "\r\n" +
		"Subject: Portfolio Contact: " + headerSafe(f.Subject) + "\r\n" +
		"From: " + s.cfg.User + "\r\n" +
		"Reply-To: " + headerSafe(f.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

// headerSafe drops CR and LF so user input cannot inject headers.
func headerSafe(v string) string {
	out := make([]rune, 0, len(v))
	for _, r := range v {
		if r == '\r' || r == '\n' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
