package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/config"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/email"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
)

// RedisOpt converts the Redis config into asynq connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Queue is the producer side used by the API process.
type Queue struct {
	client enqueuer
}

var _ service.EmailEnqueuer = (*Queue)(nil)

// NewQueue creates a Queue backed by an asynq client.
func NewQueue(cfg config.RedisConfig) *Queue {
	return &Queue{client: asynq.NewClient(RedisOpt(cfg))}
}

// EnqueueEmail queues a notification e-mail.
func (q *Queue) EnqueueEmail(ctx context.Context, msg email.Message) error {
	task, err := NewEmailTask(msg)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeNotificationEmail, err)
	}
	return nil
}

// Close releases the Redis connection.
func (q *Queue) Close() error {
	return q.client.Close()
}
