package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nomenalista/guestlist-backend/internal/event"
)

type Handler struct {
	Service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

// ===========================
// My Notifications - GET /notifications
func (h *Handler) ListMine(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.Service.ListMine(c.Request.Context(), user.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// ===========================
// Mark Read - PUT /notifications/:id/read
func (h *Handler) MarkRead(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.Service.MarkRead(c.Request.Context(), uint(id), user.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

// ===========================
// Register Device Token - POST /notifications/devices
func (h *Handler) RegisterDevice(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.RegisterDeviceToken(c.Request.Context(), user.ID, &req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "device registered"})
}

// ===========================
// Remove Device Token - DELETE /notifications/devices/:token
func (h *Handler) RemoveDevice(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	if err := h.Service.RemoveDeviceToken(c.Request.Context(), user.ID, c.Param("token")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device removed"})
}
