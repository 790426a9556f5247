package promoter

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
// Add Promoter - POST /events/:id/promoters
func (h *Handler) AddPromoter(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	var req AddPromoterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.Service.AddPromoter(c.Request.Context(), user, c.Param("id"), &req, middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ===========================
// List Promoters - GET /events/:id/promoters
func (h *Handler) ListPromoters(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	promoters, err := h.Service.ListPromoters(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promoters": promoters})
}

// ===========================
// Update Promoter - PUT /events/:id/promoters/:promoterID
func (h *Handler) UpdatePromoter(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	var req UpdatePromoterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.Service.UpdatePromoter(c.Request.Context(), user, c.Param("id"), c.Param("promoterID"), &req, middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ===========================
// Delete Promoter - DELETE /events/:id/promoters/:promoterID
func (h *Handler) DeletePromoter(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	err := h.Service.DeletePromoter(c.Request.Context(), user, c.Param("id"), c.Param("promoterID"), middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "promoter removed, guests reassigned to owner"})
}

// ===========================
// Public Join - POST /public/invite/:eventID
func (h *Handler) PublicJoin(c *gin.Context) {
	var req PublicJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, tokens, err := h.Service.PublicJoin(c.Request.Context(), c.Param("eventID"), &req, middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"promoter": p, "tokens": tokens})
}
