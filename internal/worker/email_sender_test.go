package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/RandilG/Construction-Management/internal/config"
	"github.com/RandilG/Construction-Management/pkg/email"
	mockEmail "github.com/RandilG/Construction-Management/pkg/email/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTemplate = "test_project_notification.html"

func writeTestTemplate(t *testing.T) {
	t.Helper()

	require.NoError(t, os.MkdirAll("templates", 0o755))
	path := filepath.Join("templates", testTemplate)
	require.NoError(t, os.WriteFile(path, []byte("<p>{{.ProjectName}}: {{.Message}}</p>"), 0o644))

	t.Cleanup(func() {
		os.Remove(path)
		os.Remove("templates")
	})
}

func notificationConfig(enabled bool) config.EmailConfig {
	return config.EmailConfig{
		Enabled: enabled,
		Templates: config.EmailTemplates{
			ProjectNotification: testTemplate,
		},
	}
}

func TestSendProjectNotificationEmail(t *testing.T) {
	writeTestTemplate(t)

	sender := new(mockEmail.EmailSender)
	sender.On("Send", mock.MatchedBy(func(input email.SendEmailInput) bool {
		return input.To == "a@x.com" &&
			input.Subject != "" &&
			input.Body == "<p>Dream House: Foundation poured</p>"
	})).Return(nil)

	s := newEmailSender(sender, notificationConfig(true))

	err := s.SendProjectNotificationEmail(context.Background(), "a@x.com", "Dream House", "Foundation poured")
	require.NoError(t, err)

	sender.AssertExpectations(t)
}

func TestSendProjectNotificationEmail_Disabled(t *testing.T) {
	sender := new(mockEmail.EmailSender)

	s := newEmailSender(sender, notificationConfig(false))

	err := s.SendProjectNotificationEmail(context.Background(), "a@x.com", "Dream House", "Foundation poured")
	assert.NoError(t, err)

	sender.AssertNotCalled(t, "Send", mock.Anything)
}
