// Package jobs runs background work on asynq: periodic maintenance of the
// Wathq cache and call logs, and notification e-mail delivery.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/email"
)

// Task types stored in Redis.
const (
	TypeCachePurge        = "wathq:cache:purge"
	TypeCallLogPurge      = "wathq:calllogs:purge"
	TypeNotificationEmail = "notification:email"
)

// Queue names and their worker weights.
const (
	QueueDefault     = "default"
	QueueMaintenance = "maintenance"
)

// NewCachePurgeTask deletes expired cache entries. Unique keeps overlapping
// schedules from queueing the same purge twice.
func NewCachePurgeTask() *asynq.Task {
	return asynq.NewTask(TypeCachePurge, nil,
		asynq.Queue(QueueMaintenance),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(10*time.Minute),
	)
}

// NewCallLogPurgeTask deletes call logs older than the configured retention.
func NewCallLogPurgeTask() *asynq.Task {
	return asynq.NewTask(TypeCallLogPurge, nil,
		asynq.Queue(QueueMaintenance),
		asynq.MaxRetry(2),
		asynq.Timeout(15*time.Minute),
		asynq.Unique(time.Hour),
	)
}

// NewEmailTask wraps a notification e-mail.
func NewEmailTask(msg email.Message) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode email payload: %w", err)
	}
	return asynq.NewTask(TypeNotificationEmail, payload,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}
