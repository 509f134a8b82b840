package mailer

import "context"

// Message описывает письмо с одноразовым кодом.
type Message struct {
	To   string
	Code string
	Link string // адрес, на который пользователь вернётся после подтверждения
}

// EmailSender описывает контракт для отправки писем с одноразовыми кодами.
type EmailSender interface {
	SendEmailVerificationCode(ctx context.Context, msg Message) error
	SendPasswordResetCode(ctx context.Context, msg Message) error
}
