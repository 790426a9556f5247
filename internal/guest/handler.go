package guest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nomenalista/guestlist-backend/internal/event"
	"github.com/nomenalista/guestlist-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// ===========================
// Add Guest - POST /events/:id/guests
func (h *Handler) AddGuest(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	var req AddGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.Service.AddGuest(c.Request.Context(), user, c.Param("id"), &req, middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// ===========================
// List Guests - GET /events/:id/guests
func (h *Handler) ListGuests(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	guests, err := h.Service.ListGuests(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guests": guests})
}

// ===========================
// Update Guest - PUT /events/:id/guests/:guestID
func (h *Handler) UpdateGuest(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	var req UpdateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.Service.UpdateGuest(c.Request.Context(), user, c.Param("id"), c.Param("guestID"), &req, middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// ===========================
// Delete Guest - DELETE /events/:id/guests/:guestID
func (h *Handler) DeleteGuest(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	err := h.Service.DeleteGuest(c.Request.Context(), user, c.Param("id"), c.Param("guestID"), middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "guest deleted"})
}

// ===========================
// Confirm Guest - POST /events/:id/guests/:guestID/confirm
func (h *Handler) ConfirmGuest(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	g, err := h.Service.ConfirmGuest(c.Request.Context(), user, c.Param("id"), c.Param("guestID"), middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// ===========================
// Check In Guest - POST /events/:id/guests/:guestID/checkin
func (h *Handler) CheckInGuest(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	g, err := h.Service.CheckInGuest(c.Request.Context(), user, c.Param("id"), c.Param("guestID"), middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// ===========================
// Confirmation Link - GET /events/:id/guests/:guestID/link
func (h *Handler) ConfirmationLink(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	link, err := h.Service.ConfirmationLink(c.Request.Context(), user, c.Param("id"), c.Param("guestID"))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// ===========================
// Quota - GET /events/:id/quota
func (h *Handler) Quota(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	quota, err := h.Service.Quota(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quota)
}

// ===========================
// Single Promoter Stats - GET /events/:id/promoters/:promoterID/stats
func (h *Handler) PromoterStats(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	st, err := h.Service.StatsForPromoter(c.Request.Context(), user, c.Param("id"), c.Param("promoterID"))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ===========================
// Promoter Stats - GET /events/:id/stats
func (h *Handler) Stats(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	stats, err := h.Service.Stats(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
