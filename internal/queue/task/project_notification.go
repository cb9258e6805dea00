package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	ProjectNotificationTaskName  = "projectNotificationTask"
	ProjectNotificationQueueName = "projectNotificationQueue"
)

type ProjectNotification struct {
	Email       string `json:"email"`
	ProjectName string `json:"project_name"`
	Message     string `json:"message"`
}

func NewProjectNotificationTask(email string, projectName string, message string) (*asynq.Task, error) {
	var data ProjectNotification
	data.Email = email
	data.ProjectName = projectName
	data.Message = message

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		ProjectNotificationTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(ProjectNotificationQueueName),
	), nil
}
