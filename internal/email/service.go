// Package email renders and sends the platform's transactional mail:
// contact-form notifications and acknowledgments, and newsletter welcome
// messages. The provider is selected by configuration; "disabled" logs and
// drops every send, which keeps development and test environments quiet.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/buildercircle/server/internal/config"
	"github.com/buildercircle/server/internal/domain/contact"
)

//go:embed templates/*.html
var templateFS embed.FS

// Providers the service can be configured with.
const (
	ProviderResend   = "resend"
	ProviderSMTP     = "smtp"
	ProviderDisabled = "disabled"
)

type Service struct {
	config       config.EmailConfig
	templates    *template.Template
	resendClient *resend.Client
	logger       zerolog.Logger
}

func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	if cfg.Provider != ProviderDisabled {
		if err := validateAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender address: %w", err)
		}
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}

	s := &Service{
		config:    cfg,
		templates: templates,
		logger:    logger.With().Str("component", "email").Logger(),
	}
	if cfg.Provider == ProviderResend {
		s.resendClient = resend.NewClient(cfg.ResendAPIKey)
	}
	return s, nil
}

type contactData struct {
	Name        string
	Email       string
	Company     string
	Subject     string
	Message     string
	SubmittedAt string
	CurrentYear int
}

type welcomeData struct {
	Name        string
	WelcomeBack bool
	CurrentYear int
}

// SendContactNotification mails the submission to the configured admin
// address.
func (s *Service) SendContactNotification(ctx context.Context, sub *contact.Submission) error {
	if s.config.AdminAddress == "" {
		s.logger.Debug().Msg("no admin address configured, skipping contact notification")
		return nil
	}
	body, err := s.render("contact_notification.html", contactData{
		Name:        sub.Name,
		Email:       sub.Email,
		Company:     sub.Company,
		Subject:     sub.Subject,
		Message:     sub.Message,
		SubmittedAt: sub.CreatedAt.Format(time.RFC1123),
		CurrentYear: time.Now().Year(),
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New contact submission: %s", sub.Subject)
	return s.send(ctx, s.config.AdminAddress, subject, body)
}

// SendContactAck mails a receipt confirmation to the submitter.
func (s *Service) SendContactAck(ctx context.Context, sub *contact.Submission) error {
	body, err := s.render("contact_ack.html", contactData{
		Name:        sub.Name,
		Subject:     sub.Subject,
		CurrentYear: time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, sub.Email, "We received your message", body)
}

// SendNewsletterWelcome mails the welcome (or welcome-back) message to a
// new or reactivated subscriber.
func (s *Service) SendNewsletterWelcome(ctx context.Context, to, name string, welcomeBack bool) error {
	body, err := s.render("newsletter_welcome.html", welcomeData{
		Name:        name,
		WelcomeBack: welcomeBack,
		CurrentYear: time.Now().Year(),
	})
	if err != nil {
		return err
	}
	subject := "Welcome to the Builder Circle newsletter"
	if welcomeBack {
		subject = "Welcome back to the Builder Circle newsletter"
	}
	return s.send(ctx, to, subject, body)
}

func (s *Service) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := validateAddress(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}

	switch s.config.Provider {
	case ProviderResend:
		return s.sendViaResend(ctx, to, subject, htmlBody)
	case ProviderSMTP:
		return s.sendViaSMTP(to, subject, htmlBody)
	default:
		s.logger.Info().
			Str("to", to).
			Str("subject", subject).
			Msg("email provider disabled, dropping message")
		return nil
	}
}

func (s *Service) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// validateAddress checks format and rejects header-injection attempts.
func validateAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("email address contains newline characters")
	}
	return nil
}
