package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/makkenzo/niches-hunter-api/internal/config"
	"go.uber.org/zap"
)

// Sender delivers a rendered HTML message to one recipient.
type Sender interface {
	SendMail(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPSender struct {
	cfg    config.EmailConfig
	auth   smtp.Auth
	logger *zap.Logger
}

func NewSMTPSender(cfg config.EmailConfig, logger *zap.Logger) *SMTPSender {
	var auth smtp.Auth
	if cfg.User != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		cfg:    cfg,
		auth:   auth,
		logger: logger.Named("SMTPSender"),
	}
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) SendMail(ctx context.Context, to, subject, htmlBody string) error {
	if s.cfg.Host == "" {
		s.logger.Warn("SMTP host not configured, dropping email", zap.String("subject", subject))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	body := buildMessage(s.cfg.From, s.cfg.FromName, to, subject, htmlBody)

	if s.auth != nil {
		if err := smtp.SendMail(addr, s.auth, s.cfg.From, []string{sanitizeHeader(to)}, body); err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	}

	c, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(sanitizeHeader(to)); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return c.Quit()
}

func buildMessage(from, fromName, to, subject, htmlBody string) []byte {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	msg := []string{
		"From: " + sanitizeHeader(fromHeader),
		"To: " + sanitizeHeader(to),
		"Subject: " + sanitizeHeader(subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		htmlBody,
	}
	return []byte(strings.Join(msg, "\r\n"))
}

func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}
