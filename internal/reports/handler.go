package reports

import (
	"fmt"
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
// Export Guest List - GET /events/:id/export?format=csv|excel|pdf
func (h *Handler) ExportGuestList(c *gin.Context) {
	user, ok := event.UserFromContext(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", FormatCSV)
	data, fname, contentType, err := h.Service.ExportGuestList(c.Request.Context(), user, c.Param("id"), format, middleware.GetIPFromContext(c))
	if err != nil {
		event.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fname))
	c.Data(http.StatusOK, contentType, data)
}
