package notifications

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"time"
)

// EmailService interface for sending emails
type EmailService interface {
	SendNotification(ctx context.Context, notification *EmailNotification) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// NewSMTPConfigFromEnv creates SMTP config from environment variables
func NewSMTPConfigFromEnv() *SMTPConfig {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}

	timeout, _ := time.ParseDuration(os.Getenv("SMTP_TIMEOUT"))
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &SMTPConfig{
		Host:      os.Getenv("SMTP_HOST"),
		Port:      port,
		Username:  os.Getenv("SMTP_USERNAME"),
		Password:  os.Getenv("SMTP_PASSWORD"),
		FromEmail: os.Getenv("FROM_EMAIL"),
		FromName:  "SkyBook",
		Timeout:   timeout,
	}
}

// SMTPEmailService delivers notifications over SMTP
type SMTPEmailService struct {
	config *SMTPConfig
}

// NewSMTPEmailService creates a new SMTP email service
func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if config == nil {
		return nil, fmt.Errorf("SMTP config is nil")
	}
	if config.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if config.FromEmail == "" {
		return nil, fmt.Errorf("sender address is required")
	}

	return &SMTPEmailService{config: config}, nil
}

// SendNotification sends a plain-text notification email
func (s *SMTPEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	if notification.RecipientEmail == "" {
		return fmt.Errorf("notification has no recipient")
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", notification.RecipientEmail))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", notification.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(notification.Body)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{notification.RecipientEmail}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", notification.RecipientEmail, err)
	}

	return nil
}

// LogEmailService writes notifications to the process log instead of
// sending them. Used in development when no SMTP host is configured.
type LogEmailService struct{}

// NewLogEmailService creates a log-only email service
func NewLogEmailService() *LogEmailService {
	return &LogEmailService{}
}

// SendNotification logs the notification instead of delivering it
func (s *LogEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	log.Printf("EMAIL [%s] to=%s subject=%q", notification.Type, notification.RecipientEmail, notification.Subject)
	return nil
}
