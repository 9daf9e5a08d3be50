package service

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"

	"github.com/plateful/backend/internal/models"
)

type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
	baseURL      string
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func NewEmailService() IEmailService {
	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &EmailService{
		smtpHost:     readSecret("smtp_host"),
		smtpPort:     readSecret("smtp_port"),
		smtpUsername: readSecret("smtp_username"),
		smtpPassword: readSecret("smtp_password"),
		fromEmail:    readSecret("email_from"),
		fromName:     readSecret("email_from_name"),
		baseURL:      baseURL,
	}
}

func (s *EmailService) SendConfirmationEmail(user *models.User, token string) error {
	subject := "[Plateful] Confirm your email address"
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Plateful! Please confirm your email address by visiting:\n\n%s/api/v1/auth/confirm?token=%s\n\nIf you did not create this account you can ignore this message.\n",
		user.Name, s.baseURL, token,
	)
	return s.SendEmail(user.Email, subject, body)
}

func (s *EmailService) SendPasswordResetEmail(user *models.User, token string) error {
	subject := "[Plateful] Reset your password"
	body := fmt.Sprintf(
		"Hi %s,\n\nA password reset was requested for your account. The reset token below is valid for one hour:\n\n%s\n\nIf you did not request this, your password is unchanged and you can ignore this message.\n",
		user.Name, token,
	)
	return s.SendEmail(user.Email, subject, body)
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	// If SMTP is not configured, log the email instead
	if s.smtpHost == "" || s.smtpPort == "" {
		log.Printf("[EmailService] SMTP not configured, logging email\nTo: %s\nSubject: %s\n%s", to, subject, body)
		return nil
	}

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := s.smtpHost + ":" + s.smtpPort
	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
