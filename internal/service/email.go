package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/pageza/kodawari/backend/config"
	"github.com/pageza/kodawari/backend/internal/apperrors"
)

const (
	customerSubject = "[Kodawari Recipe Support] Thank you for contacting us"
	supportSubject  = "New inquiry from the Kodawari Recipe app - %s"
)

// ContactMailer sends the contact form acknowledgement and support copy
type ContactMailer struct {
	from    string
	support string
	send    func(...*gomail.Message) error
	log     *zap.Logger
}

// NewContactMailer creates a mailer. Without an SMTP host the messages are
// logged instead of sent.
func NewContactMailer(cfg *config.Config, log *zap.Logger) *ContactMailer {
	from := cfg.SMTPUser
	if from == "" {
		from = cfg.SupportEmail
	}
	support := cfg.SupportEmail
	if support == "" {
		support = from
	}

	m := &ContactMailer{from: from, support: support, log: log}
	if cfg.SMTPHost != "" {
		dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
		m.send = dialer.DialAndSend
	} else {
		m.send = m.logOnly
	}
	return m
}

// SendContact mails the customer a copy of their inquiry and forwards it to
// support with Reply-To set to the customer.
func (m *ContactMailer) SendContact(ctx context.Context, toEmail, subject, message string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" || strings.TrimSpace(subject) == "" || strings.TrimSpace(message) == "" {
		return apperrors.NewValidationError("toEmail, subject and message are required")
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return apperrors.NewValidationError("toEmail must be a valid email address")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	customer := gomail.NewMessage()
	customer.SetHeader("From", m.from)
	customer.SetHeader("To", toEmail)
	customer.SetHeader("Subject", customerSubject)
	customer.SetBody("text/plain", fmt.Sprintf("We have received your inquiry with the following content:\n\n%s\n\n%s", subject, message))

	forward := gomail.NewMessage()
	forward.SetHeader("From", m.from)
	forward.SetHeader("To", m.support)
	forward.SetHeader("Reply-To", toEmail)
	forward.SetHeader("Subject", fmt.Sprintf(supportSubject, subject))
	forward.SetBody("text/plain", fmt.Sprintf("Customer email: %s\n\nInquiry:\n\n%s", toEmail, message))

	if err := m.send(customer, forward); err != nil {
		return apperrors.NewExternalServiceError("failed to send email", err)
	}
	return nil
}

func (m *ContactMailer) logOnly(msgs ...*gomail.Message) error {
	for _, msg := range msgs {
		m.log.Info("SMTP not configured, logging email",
			zap.Strings("to", msg.GetHeader("To")),
			zap.Strings("subject", msg.GetHeader("Subject")))
	}
	return nil
}
