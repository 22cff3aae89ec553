package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/auth"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/email"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

// EventNotification is the push event type carrying a new notification.
const EventNotification = "notification"

// NotifyInput describes a notification for one user of the current tenant.
type NotifyInput struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Type   string `json:"type" validate:"required,max=100"`
	Title  string `json:"title" validate:"required,max=200"`
	Body   string `json:"body" validate:"max=4000"`
	Link   string `json:"link" validate:"omitempty,max=500"`
	// Email also delivers the notification by e-mail.
	Email bool `json:"email"`
}

// Notifier is the part of NotificationService other services use.
type Notifier interface {
	Notify(ctx context.Context, in NotifyInput) (*model.Notification, error)
}

// Pusher delivers events to live connections of a user.
type Pusher interface {
	Push(userID, eventType string, data any) int
}

// EmailEnqueuer schedules asynchronous e-mail delivery.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, msg email.Message) error
}

// NotificationService stores, pushes and lists notifications. Listing
// operations act on the calling user.
type NotificationService interface {
	Notifier
	List(ctx context.Context, unreadOnly bool, limit, offset int) (*ListResult[model.Notification], error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
	UnreadCount(ctx context.Context) (int, error)
}

type notificationService struct {
	repo   repository.NotificationRepository
	users  repository.UserRepository
	pusher Pusher
	emails EmailEnqueuer
	now    func() time.Time
}

// NewNotificationService constructs a new NotificationService. pusher and
// emails may be nil.
func NewNotificationService(
	repo repository.NotificationRepository,
	users repository.UserRepository,
	pusher Pusher,
	emails EmailEnqueuer,
) NotificationService {
	return &notificationService{
		repo:   repo,
		users:  users,
		pusher: pusher,
		emails: emails,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *notificationService) Notify(ctx context.Context, in NotifyInput) (*model.Notification, error) {
	n, err := s.repo.Create(ctx, &model.Notification{
		UserID: in.UserID,
		Type:   in.Type,
		Title:  strings.TrimSpace(in.Title),
		Body:   in.Body,
		Link:   in.Link,
	})
	if err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.pusher.Push(n.UserID, EventNotification, n)
	}

	if in.Email && s.emails != nil {
		if err := s.enqueueEmail(ctx, n); err != nil {
			// The notification itself is stored; delivery by mail is best effort.
			zerolog.Ctx(ctx).Warn().Err(err).Str("notification_id", n.ID).Msg("notification email not enqueued")
		}
	}
	return n, nil
}

func (s *notificationService) enqueueEmail(ctx context.Context, n *model.Notification) error {
	u, err := s.users.FindByID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("load recipient: %w", notFound(err))
	}
	text := n.Body
	if n.Link != "" {
		text += "\n\n" + n.Link
	}
	return s.emails.EnqueueEmail(ctx, email.Message{
		To:      []string{u.Email},
		Subject: n.Title,
		Text:    text,
	})
}

func currentUser(ctx context.Context) (string, error) {
	a, ok := tenant.ActorFromContext(ctx)
	if !ok {
		return "", auth.ErrInvalidToken
	}
	if a.Kind != tenant.KindUser {
		return "", ErrForbidden
	}
	return a.UserID, nil
}

func (s *notificationService) List(ctx context.Context, unreadOnly bool, limit, offset int) (*ListResult[model.Notification], error) {
	uid, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.repo.ListForUser(ctx, uid, unreadOnly, pageQuery(limit, offset, ""))
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	uid, err := currentUser(ctx)
	if err != nil {
		return err
	}
	return notFound(s.repo.MarkRead(ctx, uid, id, s.now()))
}

func (s *notificationService) MarkAllRead(ctx context.Context) (int64, error) {
	uid, err := currentUser(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkAllRead(ctx, uid, s.now())
}

func (s *notificationService) UnreadCount(ctx context.Context) (int, error) {
	uid, err := currentUser(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.UnreadCount(ctx, uid)
}
