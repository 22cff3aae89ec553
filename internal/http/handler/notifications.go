package handler

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/notify"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/validation"
)

const wsUserLocalKey = "ws_user_id"

// @Summary List notifications of the caller
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.ListResult[model.Notification]
// @Router /api/v1/notifications [get]
func ListNotifications(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return respondError(c, err)
		}
		unread, err := queryBool(c, "unread")
		if err != nil {
			return respondError(c, err)
		}
		res, err := svc.List(c.UserContext(), unread != nil && *unread, limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

func UnreadNotificationCount(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.UnreadCount(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"unread": n})
	}
}

func MarkNotificationRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		if err := svc.MarkRead(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func MarkAllNotificationsRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.MarkAllRead(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"updated": n})
	}
}

// SendNotification lets a user manager notify another user of the same tenant.
//
// @Summary Send a notification
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.NotifyInput true "Notification"
// @Success 201 {object} model.Notification
// @Failure 404 {object} errorPayload
// @Router /api/v1/notifications [post]
func SendNotification(users service.UserService, svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.NotifyInput
		if err := validation.BindAndValidate(c, &in); err != nil {
			return respondError(c, err)
		}
		// Users are tenant scoped, so this also rejects recipients of other tenants.
		if _, err := users.Get(c.UserContext(), in.UserID); err != nil {
			return respondError(c, err)
		}
		n, err := svc.Notify(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(n)
	}
}

// NotificationsUpgrade rejects plain HTTP requests and hands the caller's
// user id to the WebSocket handler. It runs after the auth middleware.
func NotificationsUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		actor, ok := tenant.ActorFromContext(c.UserContext())
		if !ok {
			return fiber.ErrUnauthorized
		}
		c.Locals(wsUserLocalKey, actor.UserID)
		return c.Next()
	}
}

// NotificationsSocket keeps the connection registered on hub until the
// client goes away. Incoming messages are read and discarded.
func NotificationsSocket(hub *notify.Hub, log zerolog.Logger) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(wsUserLocalKey).(string)
		if userID == "" {
			_ = conn.Close()
			return
		}
		unregister := hub.Register(userID, conn)
		defer unregister()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Str("user_id", userID).Msg("websocket closed")
				}
				return
			}
		}
	})
}
