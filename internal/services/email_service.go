package services

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/cruxmailweb/access-management-tool/internal/config"
)

// DispatchResult reports which provider accepted an outbound email.
type DispatchResult struct {
	Delivered bool   `json:"delivered"`
	Provider  string `json:"provider"`
}

// Dispatcher is the delivery boundary for outbound notification email.
type Dispatcher interface {
	Send(recipients []string, subject, html, text string) (DispatchResult, error)
}

// EmailService delivers email through SendGrid. When no API key is
// configured it degrades to a console provider that logs the would-be email
// and reports it as accepted, so reminder flows keep working in environments
// without email infrastructure.
type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	log       *logrus.Logger
}

// NewEmailService builds the dispatcher from configuration.
func NewEmailService(cfg *config.Config, log *logrus.Logger) *EmailService {
	s := &EmailService{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		log:       log,
	}
	if cfg.SendGridAPIKey != "" {
		s.client = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}
	return s
}

// Send delivers one email to all recipients. Only transport failures return
// an error; the unconfigured case is an accepted no-op.
func (s *EmailService) Send(recipients []string, subject, html, text string) (DispatchResult, error) {
	if s.client == nil {
		return s.sendToConsole(recipients, subject, text), nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject

	personalization := mail.NewPersonalization()
	for _, recipient := range recipients {
		personalization.AddTos(mail.NewEmail("", recipient))
	}
	message.AddPersonalizations(personalization)
	message.AddContent(
		mail.NewContent("text/plain", text),
		mail.NewContent("text/html", html),
	)

	response, err := s.client.Send(message)
	if err != nil {
		return DispatchResult{Provider: "sendgrid"}, fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	if response.StatusCode >= 400 {
		return DispatchResult{Provider: "sendgrid"}, fmt.Errorf("%w: sendgrid returned status %d", ErrDispatch, response.StatusCode)
	}

	return DispatchResult{Delivered: true, Provider: "sendgrid"}, nil
}

func (s *EmailService) sendToConsole(recipients []string, subject, text string) DispatchResult {
	s.log.WithFields(logrus.Fields{
		"to":      recipients,
		"subject": subject,
	}).Info("No email provider configured, logging instead of sending")
	s.log.Debug(text)
	return DispatchResult{Delivered: true, Provider: "console"}
}
