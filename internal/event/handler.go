package event

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nomenalista/guestlist-backend/internal/auth"
	"github.com/nomenalista/guestlist-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// ===========================
// Extract authenticated user
func UserFromContext(c *gin.Context) (*auth.User, bool) {
	raw, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user missing from context"})
		return nil, false
	}
	user, ok := raw.(auth.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user in context"})
		return nil, false
	}
	return &user, true
}

// HTTPStatus maps domain errors onto response codes. Sibling handler
// packages reuse it so the same failure always surfaces the same way.
func HTTPStatus(err error) int {
	var storageErr *StorageError
	switch {
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrInvitesDisabled),
		errors.Is(err, ErrCheckInDisabled):
		return http.StatusForbidden
	case errors.Is(err, ErrEventNotFound),
		errors.Is(err, ErrGuestNotFound),
		errors.Is(err, ErrPromoterNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrQuotaExceeded),
		errors.Is(err, ErrAlreadyConfirmed),
		errors.Is(err, ErrPromoterExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidDate):
		return http.StatusBadRequest
	case errors.As(err, &storageErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func RespondError(c *gin.Context, err error) {
	c.JSON(HTTPStatus(err), gin.H{"error": err.Error()})
}

// ===========================
// Create Event - POST /events
func (h *Handler) CreateEvent(c *gin.Context) {
	user, ok := UserFromContext(c)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := h.Service.CreateEvent(c.Request.Context(), user, &req, middleware.GetIPFromContext(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// ===========================
// List Events - GET /events
func (h *Handler) ListEvents(c *gin.Context) {
	user, ok := UserFromContext(c)
	if !ok {
		return
	}

	events, err := h.Service.ListEvents(c.Request.Context(), user)
	if err != nil {
		RespondError(c, err)
		return
	}

	// Each event's guest list is trimmed to what this user may see of it.
	for i := range events {
		perms := ResolvePermissions(user, &events[i])
		events[i].Guests = VisibleGuests(&events[i], perms)
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// ===========================
// Get Event - GET /events/:id
func (h *Handler) GetEvent(c *gin.Context) {
	user, ok := UserFromContext(c)
	if !ok {
		return
	}

	ev, perms, err := h.Service.GetEvent(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	view := *ev
	view.Guests = VisibleGuests(ev, perms)
	c.JSON(http.StatusOK, gin.H{"event": view, "permissions": perms})
}

// ===========================
// Update Event - PUT /events/:id
func (h *Handler) UpdateEvent(c *gin.Context) {
	user, ok := UserFromContext(c)
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := h.Service.UpdateEvent(c.Request.Context(), user, c.Param("id"), &req, middleware.GetIPFromContext(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// ===========================
// Delete Event - DELETE /events/:id
func (h *Handler) DeleteEvent(c *gin.Context) {
	user, ok := UserFromContext(c)
	if !ok {
		return
	}

	nextID, err := h.Service.DeleteEvent(c.Request.Context(), user, c.Param("id"), middleware.GetIPFromContext(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted", "next_event_id": nextID})
}
