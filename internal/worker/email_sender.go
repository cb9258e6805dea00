package worker

import (
	"context"
	"fmt"

	"github.com/RandilG/Construction-Management/internal/config"
	emailProvider "github.com/RandilG/Construction-Management/pkg/email"
)

type emailSender struct {
	sender emailProvider.Sender
	config config.EmailConfig
}

func newEmailSender(
	sender emailProvider.Sender,
	config config.EmailConfig,
) *emailSender {
	return &emailSender{
		sender: sender,
		config: config,
	}
}

type projectNotificationInput struct {
	ProjectName string
	Message     string
}

func (s *emailSender) SendProjectNotificationEmail(ctx context.Context, email string, projectName string, message string) error {
	if !s.config.Enabled {
		return nil
	}

	subject := fmt.Sprintf("Home Build Pro: update on %s", projectName)

	templateInput := projectNotificationInput{ProjectName: projectName, Message: message}
	sendInput := emailProvider.SendEmailInput{Subject: subject, To: email}

	if err := sendInput.GenerateBodyFromHTML(s.config.Templates.ProjectNotification, templateInput); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}
