package email

import (
	"context"

	"campus_backend/internal/logger"
)

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет email сообщение
	Send(ctx context.Context, email *Email) error

	// SendTemplate рендерит шаблон в HTML тело и отправляет письмо
	SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error
}

// NoopProvider только пишет в лог; используется, когда email отключен
type NoopProvider struct {
	renderer TemplateRenderer
}

func NewNoopProvider(renderer TemplateRenderer) *NoopProvider {
	return &NoopProvider{renderer: renderer}
}

func (p *NoopProvider) Send(ctx context.Context, email *Email) error {
	logger.CtxDebug(ctx, "email delivery disabled, message dropped", "to", email.To, "subject", email.Subject)
	return nil
}

func (p *NoopProvider) SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error {
	if p.renderer != nil {
		if _, err := p.renderer.Render(templateName, data); err != nil {
			return err
		}
	}
	return p.Send(ctx, &Email{To: to, Subject: subject})
}
