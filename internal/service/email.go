package service

import (
	"fmt"

	"github.com/RandilG/Construction-Management/internal/config"
	emailProvider "github.com/RandilG/Construction-Management/pkg/email"
)

// Emails wraps outbound templated mail. The signup flow depends on this
// interface so tests can capture the verification code. Project
// notification mail goes through the asynq worker instead.
type Emails interface {
	SendUserVerificationEmail(input VerificationEmailInput) error
}

type VerificationEmailInput struct {
	Email string
	Name  string
	Code  string
}

type emailService struct {
	sender  emailProvider.Sender
	config  config.EmailConfig
	enabled bool
}

func newEmailService(sender emailProvider.Sender, config config.EmailConfig) *emailService {
	return &emailService{
		enabled: config.Enabled,
		sender:  sender,
		config:  config,
	}
}

type verificationEmailInput struct {
	Name string
	Code string
}

func (s *emailService) SendUserVerificationEmail(input VerificationEmailInput) error {
	if !s.enabled {
		return nil
	}

	subject := "Welcome to Home Build Pro! Verify your email address"

	templateInput := verificationEmailInput{Name: input.Name, Code: input.Code}
	sendInput := emailProvider.SendEmailInput{Subject: subject, To: input.Email}

	if err := sendInput.GenerateBodyFromHTML(s.config.Templates.Verification, templateInput); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	return s.sender.Send(sendInput)
}
