package confirmation

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
// Lookup - GET /public/invitation/:ref
func (h *Handler) Lookup(c *gin.Context) {
	view, err := h.Service.Lookup(c.Request.Context(), c.Param("ref"))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ===========================
// Confirm - POST /public/confirm/:ref
func (h *Handler) Confirm(c *gin.Context) {
	result, err := h.Service.Confirm(c.Request.Context(), c.Param("ref"), middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ===========================
// Decline - POST /public/decline/:ref
func (h *Handler) Decline(c *gin.Context) {
	result, err := h.Service.Decline(c.Request.Context(), c.Param("ref"), middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ===========================
// Event Card - GET /public/rsvp/:eventID
func (h *Handler) EventCard(c *gin.Context) {
	card, err := h.Service.EventCard(c.Request.Context(), c.Param("eventID"))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// ===========================
// Register - POST /public/rsvp/:eventID
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.Register(c.Request.Context(), c.Param("eventID"), &req, middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
