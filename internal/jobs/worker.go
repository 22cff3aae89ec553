package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/config"
)

// NewServer creates the asynq worker server.
func NewServer(redis config.RedisConfig, cfg config.JobsConfig, log zerolog.Logger) *asynq.Server {
	l := log.With().Str("component", "asynq").Logger()
	return asynq.NewServer(RedisOpt(redis), asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			QueueDefault:     3,
			QueueMaintenance: 1,
		},
		Logger: Logger{l},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			l.Error().Err(err).Str("task", task.Type()).Msg("task failed")
		}),
	})
}

// NewScheduler creates the periodic task scheduler and registers the
// maintenance tasks with their cron specs.
func NewScheduler(redis config.RedisConfig, cfg config.JobsConfig, loc *time.Location, log zerolog.Logger) (*asynq.Scheduler, error) {
	l := log.With().Str("component", "scheduler").Logger()
	s := asynq.NewScheduler(RedisOpt(redis), &asynq.SchedulerOpts{
		Location: loc,
		Logger:   Logger{l},
	})
	if err := RegisterPeriodic(s, cfg, l); err != nil {
		return nil, err
	}
	return s, nil
}

type registrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

// RegisterPeriodic registers the purge tasks on r.
func RegisterPeriodic(r registrar, cfg config.JobsConfig, log zerolog.Logger) error {
	periodic := []struct {
		spec string
		task *asynq.Task
	}{
		{cfg.CachePurgeCron, NewCachePurgeTask()},
		{cfg.CallLogPurgeCron, NewCallLogPurgeTask()},
	}
	for _, p := range periodic {
		id, err := r.Register(p.spec, p.task)
		if err != nil {
			return fmt.Errorf("register %s (%q): %w", p.task.Type(), p.spec, err)
		}
		log.Info().Str("task", p.task.Type()).Str("cron", p.spec).Str("entry_id", id).Msg("periodic task registered")
	}
	return nil
}

// Logger adapts zerolog to asynq.Logger.
type Logger struct {
	zerolog.Logger
}

var _ asynq.Logger = Logger{}

func (l Logger) Debug(args ...any) { l.Logger.Debug().Msg(fmt.Sprint(args...)) }
func (l Logger) Info(args ...any)  { l.Logger.Info().Msg(fmt.Sprint(args...)) }
func (l Logger) Warn(args ...any)  { l.Logger.Warn().Msg(fmt.Sprint(args...)) }
func (l Logger) Error(args ...any) { l.Logger.Error().Msg(fmt.Sprint(args...)) }
func (l Logger) Fatal(args ...any) { l.Logger.Fatal().Msg(fmt.Sprint(args...)) }
