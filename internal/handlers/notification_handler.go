package handlers

import (
	"github.com/anonto42/recipehub/backend/internal/middleware"
	"github.com/anonto42/recipehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles HTTP requests related to notifications
type NotificationHandler struct {
	inbox *services.Inbox
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(inbox *services.Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, guards Guards) {
	g.GET("/notifications", h.GetNotifications, guards.Protect)
	g.PUT("/notifications/read", h.MarkNotificationsRead, guards.Protect)
}

// GetNotifications returns the latest notifications and the unread count
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	result, err := h.inbox.Notifications(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return ok(c, result)
}

// MarkNotificationsRead marks all of the current user's notifications as read
func (h *NotificationHandler) MarkNotificationsRead(c echo.Context) error {
	if _, err := h.inbox.MarkAllRead(c.Request().Context(), middleware.CurrentUser(c).ID); err != nil {
		return err
	}
	return okMessage(c, "Notifications marked as read", nil)
}
