package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"fittrack/internal/config"
	"fittrack/pkg/logger"
	"fittrack/pkg/mailer"
)

// SMTPSender реализует отправку писем через стандартную библиотеку net/smtp.
type SMTPSender struct {
	cfg    *config.EmailConfig
	logger logger.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ mailer.EmailSender = (*SMTPSender)(nil)

// NewSMTPSender создаёт новый SMTP-отправитель на основе EmailConfig.
func NewSMTPSender(cfg *config.EmailConfig, logger logger.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		logger: logger,
		send:   smtp.SendMail,
	}
}

// SendEmailVerificationCode отправляет письмо с кодом подтверждения email после регистрации.
func (s *SMTPSender) SendEmailVerificationCode(ctx context.Context, msg mailer.Message) error {
	body := fmt.Sprintf("Your verification code is: %s\n\nThis code will expire in a few minutes.", msg.Code)
	if msg.Link != "" {
		body += fmt.Sprintf("\n\nAfter confirming, continue here: %s", msg.Link)
	}
	return s.deliver(ctx, msg.To, "Confirm your email", body, "verification")
}

// SendPasswordResetCode отправляет письмо с кодом сброса пароля.
func (s *SMTPSender) SendPasswordResetCode(ctx context.Context, msg mailer.Message) error {
	body := fmt.Sprintf("Your password reset code is: %s\n\nIf you did not request a reset, ignore this email.", msg.Code)
	if msg.Link != "" {
		body += fmt.Sprintf("\n\nSet a new password here: %s", msg.Link)
	}
	return s.deliver(ctx, msg.To, "Reset your password", body, "password_reset")
}

func (s *SMTPSender) deliver(ctx context.Context, to, subject, body, kind string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw := buildMessage(s.cfg.FromEmail, to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)

	// net/smtp не поддерживает контекст, он проверяется только перед отправкой.
	if err := s.send(addr, auth, s.cfg.FromEmail, []string{to}, []byte(raw)); err != nil {
		s.logger.Error("failed to send email", map[string]any{
			"email": to,
			"kind":  kind,
			"err":   err.Error(),
		})
		return err
	}

	s.logger.Info("email sent", map[string]any{
		"email": to,
		"kind":  kind,
	})
	return nil
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
