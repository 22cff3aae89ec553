package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/email"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
)

// Handlers processes every task type.
type Handlers struct {
	wathq     service.WathqService
	callLogs  service.CallLogService
	sender    email.Sender
	retention time.Duration
	log       zerolog.Logger
}

// NewHandlers wires the task handlers.
func NewHandlers(wathq service.WathqService, callLogs service.CallLogService, sender email.Sender, retention time.Duration, log zerolog.Logger) *Handlers {
	return &Handlers{
		wathq:     wathq,
		callLogs:  callLogs,
		sender:    sender,
		retention: retention,
		log:       log.With().Str("component", "jobs").Logger(),
	}
}

// Mux routes task types to handlers.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCachePurge, h.HandleCachePurge)
	mux.HandleFunc(TypeCallLogPurge, h.HandleCallLogPurge)
	mux.HandleFunc(TypeNotificationEmail, h.HandleEmail)
	return mux
}

func (h *Handlers) HandleCachePurge(ctx context.Context, _ *asynq.Task) error {
	n, err := h.wathq.PurgeExpired(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("task", TypeCachePurge).Msg("cache purge failed")
		return err
	}
	h.log.Info().Str("task", TypeCachePurge).Int64("deleted", n).Msg("expired cache entries purged")
	return nil
}

func (h *Handlers) HandleCallLogPurge(ctx context.Context, _ *asynq.Task) error {
	n, err := h.callLogs.Purge(ctx, h.retention)
	if err != nil {
		h.log.Error().Err(err).Str("task", TypeCallLogPurge).Msg("call log purge failed")
		return err
	}
	h.log.Info().Str("task", TypeCallLogPurge).Int64("deleted", n).Dur("retention", h.retention).Msg("old call logs purged")
	return nil
}

func (h *Handlers) HandleEmail(ctx context.Context, t *asynq.Task) error {
	var msg email.Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		// A payload that never decodes will not decode on retry either.
		return fmt.Errorf("decode email payload: %v: %w", err, asynq.SkipRetry)
	}
	id, err := h.sender.Send(ctx, msg)
	if err != nil {
		h.log.Error().Err(err).Strs("to", msg.To).Msg("notification email failed")
		return err
	}
	h.log.Info().Strs("to", msg.To).Str("email_id", id).Msg("notification email sent")
	return nil
}
