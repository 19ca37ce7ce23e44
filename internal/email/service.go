package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

type Service interface {
	SendWelcome(ctx context.Context, to string, name string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	from   string
	dialer dialer
}

func NewSMTPService(cfg Config) Service {
	return &smtpService{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpService) SendWelcome(ctx context.Context, to string, name string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour hospital portal account is ready.\n", name)
	return s.SendCustom(ctx, to, "Welcome", body)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// logService is used when SMTP is disabled.
type logService struct{}

func NewLogService() Service {
	return logService{}
}

func (logService) SendWelcome(ctx context.Context, to string, name string) error {
	return logService{}.SendCustom(ctx, to, "Welcome", name)
}

func (logService) SendCustom(_ context.Context, to string, subject string, _ string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("smtp disabled, email not sent")
	return nil
}
