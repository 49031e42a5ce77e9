package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeDeliverContactMessage = "contact:deliver"
)

// Queue names
const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// ContactPayload identifies the stored contact message to deliver
type ContactPayload struct {
	MessageID string `json:"message_id"`
}

// Enqueuer is the subset of *asynq.Client the API server needs
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewDeliverContactMessageTask creates a task to deliver a stored contact message
func NewDeliverContactMessageTask(messageID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ContactPayload{
		MessageID: messageID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(
		TypeDeliverContactMessage,
		payload,
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.Queue(QueueDefault),
	), nil
}

// ParseContactPayload parses the contact payload from an Asynq task
func ParseContactPayload(task *asynq.Task) (ContactPayload, error) {
	var payload ContactPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.MessageID == "" {
		return payload, fmt.Errorf("payload missing message_id")
	}
	return payload, nil
}
