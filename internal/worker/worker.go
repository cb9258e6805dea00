package worker

import (
	"context"

	"github.com/RandilG/Construction-Management/internal/config"
	emailProvider "github.com/RandilG/Construction-Management/pkg/email"
)

type Workers struct {
	EmailSender EmailSender
}

type Deps struct {
	EmailProvider emailProvider.Sender
	Config        *config.Config
}

type EmailSender interface {
	SendProjectNotificationEmail(ctx context.Context, email string, projectName string, message string) error
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		EmailSender: newEmailSender(deps.EmailProvider, deps.Config.Email),
	}
}
