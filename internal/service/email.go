package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendVerificationEmail(email, token, name string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.appURL, token)
	subject, body := verificationEmailTemplate(name, verifyURL, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "verification", "to", email, "subject", subject, "url", verifyURL)
		return nil
	}

	return s.send(email, subject, body, "", "verification")
}

func (s *EmailService) SendForgotPasswordEmail(email, token, name string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)
	subject, body := forgotPasswordEmailTemplate(name, resetURL, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "forgot_password", "to", email, "subject", subject, "url", resetURL)
		return nil
	}

	return s.send(email, subject, body, "", "forgot_password")
}

// SendCongratsEmail celebrates a freshly completed goal. Sent at most once
// per goal, on the mutation that pushed it to 100%.
func (s *EmailService) SendCongratsEmail(email, name, goalName, completedAt string) error {
	subject, body, html := congratsEmailTemplate(name, goalName, completedAt, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "congrats", "to", email, "goal", goalName)
		return nil
	}

	return s.send(email, subject, body, html, "congrats")
}

// SendReminderEmail delivers a progress report: a one-line summary plus a
// per-goal table in both text and HTML.
func (s *EmailService) SendReminderEmail(email, name, textReport, htmlReport string) error {
	subject := fmt.Sprintf("Your %s goal progress report", s.appName)
	body := fmt.Sprintf("Hi %s,\n\n%s\n\nBest,\nThe %s Team", name, textReport, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "reminder", "to", email, "subject", subject)
		return nil
	}

	return s.send(email, subject, body, htmlReport, "reminder")
}

func (s *EmailService) send(to, subject, text, html, emailType string) error {
	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	}
	if html != "" {
		params.Html = html
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err == nil {
		slog.Info("email sent", "type", emailType, "to", to)
	}
	return err
}
