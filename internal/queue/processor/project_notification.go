package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RandilG/Construction-Management/internal/queue/task"
	"github.com/RandilG/Construction-Management/internal/worker"

	"github.com/hibiken/asynq"
)

type projectNotificationProcessor struct {
	workers *worker.Workers
}

func NewProjectNotificationProcessor(workers *worker.Workers) *projectNotificationProcessor {
	return &projectNotificationProcessor{
		workers: workers,
	}
}

func (p *projectNotificationProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.ProjectNotification
	err := json.Unmarshal(t.Payload(), &data)
	if err != nil {
		return fmt.Errorf("process project notification task json unmarshal failed: %w", err)
	}

	if err = p.workers.EmailSender.SendProjectNotificationEmail(ctx, data.Email, data.ProjectName, data.Message); err != nil {
		return fmt.Errorf("send project notification email failed: %w", err)
	}

	return nil
}
