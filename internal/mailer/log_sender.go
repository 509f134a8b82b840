package mailer

import (
	"context"

	"fittrack/pkg/logger"
	"fittrack/pkg/mailer"
)

// LogSender пишет коды в лог вместо отправки. Используется, когда SMTP не настроен.
type LogSender struct {
	logger logger.Logger
}

var _ mailer.EmailSender = (*LogSender)(nil)

// NewLogSender создаёт отправитель, пишущий письма в лог.
func NewLogSender(logger logger.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendEmailVerificationCode(_ context.Context, msg mailer.Message) error {
	s.logger.Info("email verification code (smtp disabled)", map[string]any{
		"email": msg.To,
		"code":  msg.Code,
		"link":  msg.Link,
	})
	return nil
}

func (s *LogSender) SendPasswordResetCode(_ context.Context, msg mailer.Message) error {
	s.logger.Info("password reset code (smtp disabled)", map[string]any{
		"email": msg.To,
		"code":  msg.Code,
		"link":  msg.Link,
	})
	return nil
}
