package server

import (
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyNotifications handles GET /api/notifications?limit=&cursor=&unread=
func (s *Server) GetMyNotifications(c *fiber.Ctx) error {
	page := parsePage(c)

	notifications, err := s.notificationService.GetMyNotifications(c.Context(), service.MyNotificationsInput{
		UserID:     actorID(c),
		Limit:      page.Limit,
		Cursor:     page.Cursor,
		OnlyUnread: c.QueryBool("unread", false),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(notifications)
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.notificationService.GetUnreadCount(c.Context(), actorID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": count})
}

// MarkNotificationAsRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationAsRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	notification, err := s.notificationService.MarkAsRead(c.Context(), actorID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(notification)
}

// MarkAllNotificationsAsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsAsRead(c *fiber.Ctx) error {
	if err := s.notificationService.MarkAllAsRead(c.Context(), actorID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteNotification handles DELETE /api/notifications/:id
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationService.DeleteNotification(c.Context(), actorID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
