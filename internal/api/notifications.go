package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/safar/shop-backoffice/internal/notify"
	"github.com/safar/shop-backoffice/internal/order"
)

// Notification is the admin inbox plus the live websocket feed.
type Notification struct {
	Service *order.Service
	Hub     *notify.Hub
}

type listNotificationsQuery struct {
	IsRead *bool `form:"is_read"`
	Page   int   `form:"page" binding:"omitempty,min=1"`
	Limit  int   `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (h *Notification) RegisterRouter(r gin.IRouter, ws gin.IRouter, secret []byte) {
	admin := Auth(secret, models.RoleSuperAdmin)

	n := r.Group("/notifications", admin)
	{
		n.GET("", Wrap(h.List))
		n.GET("/stats", Wrap(h.Stats))
		n.PATCH("/read-all", Wrap(h.MarkAllRead))
		n.PATCH("/:id/read", Wrap(h.MarkRead))
	}

	if h.Hub != nil {
		ws.GET("/notifications", admin, func(c *gin.Context) {
			h.Hub.ServeWS(c.Writer, c.Request)
		})
	}
}

func (h *Notification) List(c *gin.Context) error {
	var q listNotificationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return bindError(err)
	}

	page, err := h.Service.ListNotifications(c.Request.Context(), q.IsRead, q.Page, q.Limit)
	if err != nil {
		return err
	}

	OKWithMeta(c, "Notifications retrieved successfully", page.Items, offsetMeta(page))
	return nil
}

func (h *Notification) Stats(c *gin.Context) error {
	stats, err := h.Service.NotificationStats(c.Request.Context())
	if err != nil {
		return err
	}

	OK(c, http.StatusOK, "Notification stats retrieved successfully", stats)
	return nil
}

func (h *Notification) MarkRead(c *gin.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperr.Validation("invalid notification id %q", c.Param("id"))
	}

	n, err := h.Service.MarkNotificationRead(c.Request.Context(), id)
	if err != nil {
		return err
	}

	OK(c, http.StatusOK, "Notification marked as read", n)
	return nil
}

func (h *Notification) MarkAllRead(c *gin.Context) error {
	count, err := h.Service.MarkAllNotificationsRead(c.Request.Context())
	if err != nil {
		return err
	}

	OK(c, http.StatusOK, "All notifications marked as read", gin.H{"updated": count})
	return nil
}
