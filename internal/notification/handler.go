package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/welfare-management-backend/middleware"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// ListMyNotifications returns the caller's bell feed
func (h *Handler) ListMyNotifications(c *gin.Context) {
	user := middleware.GetUserFromContext(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.svc.ListForUser(c.Request.Context(), user.ID, unreadOnly, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    notifications,
		"total":   total,
		"success": true,
	})
}

func (h *Handler) GetUnreadCount(c *gin.Context) {
	user := middleware.GetUserFromContext(c)

	count, err := h.svc.CountUnread(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   count,
		"success": true,
	})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	user := middleware.GetUserFromContext(c)
	if err := h.svc.MarkRead(c.Request.Context(), user.ID, uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	user := middleware.GetUserFromContext(c)

	updated, err := h.svc.MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark all read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated": updated,
		"success": true,
	})
}

// RegisterDeviceToken saves an FCM token for push delivery
func (h *Handler) RegisterDeviceToken(c *gin.Context) {
	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	if err := h.svc.RegisterDeviceToken(c.Request.Context(), user.ID, req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register device token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Device token registered",
		"success": true,
	})
}

func (h *Handler) UnregisterDeviceToken(c *gin.Context) {
	var body struct {
		DeviceToken string `json:"device_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	if err := h.svc.UnregisterDeviceToken(c.Request.Context(), user.ID, body.DeviceToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unregister device token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Device token removed",
		"success": true,
	})
}
