package email

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dmorales/becas-core/internal/app/models"
)

// Service defines the interface for email operations
type Service interface {
	SendStatusChanged(toEmail, toName string, from, to models.Status, reason *string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// serviceImpl implements Service over plain SMTP.
type serviceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewService creates a new email Service
func NewService(config SMTPConfig, logger zerolog.Logger) Service {
	return &serviceImpl{config: config, logger: logger}
}

// statusSubjects maps target statuses to notification subjects. Statuses not
// listed fall back to a generic subject.
var statusSubjects = map[models.Status]string{
	models.StatusDocsUploaded:      "Documents received",
	models.StatusChangesRequested:  "Your documents need changes",
	models.StatusApproved:          "Your documents were approved",
	models.StatusContractGenerated: "Your scholarship contract is ready",
	models.StatusContractRejected:  "Your signed contract was rejected",
	models.StatusReadyForPayment:   "Your scholarship is ready for payment",
	models.StatusPaid:              "Your scholarship has been paid",
}

// SendStatusChanged notifies the applicant about a lifecycle status change.
// When SMTP credentials are not configured (development), the mail is logged
// instead of sent and no error is returned.
func (s *serviceImpl) SendStatusChanged(toEmail, toName string, from, to models.Status, reason *string) error {
	subject, ok := statusSubjects[to]
	if !ok {
		subject = fmt.Sprintf("Scholarship status update: %s", to)
	}

	body := fmt.Sprintf("Hello %s,\n\nYour scholarship record moved from %s to %s.\n", toName, from, to)
	if reason != nil && *reason != "" {
		body += fmt.Sprintf("\nReviewer note: %s\n", *reason)
	}
	body += "\n— Scholarship Office\n"

	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP credentials not configured - notification not sent")
		return nil
	}

	msg := []byte("From: " + s.config.FromName + " <" + s.config.FromEmail + ">\r\n" +
		"To: " + toEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n" +
		body)

	addr := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	authn := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	if err := smtp.SendMail(addr, authn, s.config.FromEmail, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("sending status notification: %w", err)
	}

	s.logger.Info().Str("toEmail", toEmail).Str("subject", subject).Msg("Status notification sent")
	return nil
}
