package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nomenalista/guestlist-backend/config"
	"github.com/nomenalista/guestlist-backend/internal/auditlog"
	"github.com/nomenalista/guestlist-backend/internal/auth"
	"github.com/nomenalista/guestlist-backend/internal/confirmation"
	"github.com/nomenalista/guestlist-backend/internal/event"
	"github.com/nomenalista/guestlist-backend/internal/guest"
	"github.com/nomenalista/guestlist-backend/internal/notification"
	"github.com/nomenalista/guestlist-backend/internal/promoter"
	"github.com/nomenalista/guestlist-backend/internal/reports"
	"github.com/nomenalista/guestlist-backend/middleware"
)

// Handlers bundles everything SetupRoutes wires in.
type Handlers struct {
	Auth         *auth.Handler
	Event        *event.Handler
	Guest        *guest.Handler
	Promoter     *promoter.Handler
	Confirmation *confirmation.Handler
	Notification *notification.Handler
	Reports      *reports.Handler
	AuditSvc     auditlog.Service
	AuthSvc      auth.Service
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, h Handlers) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.AuditMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ===========================
	// Public surface
	//
	// Everything a guest or invitee touches without a session. Rate limited:
	// tokens and codes are the only credential here.
	public := r.Group("/public")
	public.Use(middleware.PublicRateLimiter(cfg.PublicRateLimit))
	{
		public.GET("/invitation/:ref", h.Confirmation.Lookup)
		public.POST("/confirm/:ref", h.Confirmation.Confirm)
		public.POST("/decline/:ref", h.Confirmation.Decline)
		public.GET("/rsvp/:eventID", h.Confirmation.EventCard)
		public.POST("/rsvp/:eventID", h.Confirmation.Register)
		public.POST("/invite/:eventID", h.Promoter.PublicJoin)
	}

	api := r.Group("/api/v1")

	// Session endpoints need no token; they mint it.
	api.POST("/auth/session", h.Auth.StartSession)
	api.POST("/auth/refresh", h.Auth.Refresh)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, h.AuthSvc))
	{
		protected.GET("/auth/me", h.Auth.Me)

		eventRoutes := protected.Group("/events")
		{
			eventRoutes.POST("", h.Event.CreateEvent)
			eventRoutes.GET("", h.Event.ListEvents)
			eventRoutes.GET("/:id", h.Event.GetEvent)
			eventRoutes.PUT("/:id", h.Event.UpdateEvent)
			eventRoutes.DELETE("/:id", h.Event.DeleteEvent)

			eventRoutes.POST("/:id/guests", h.Guest.AddGuest)
			eventRoutes.GET("/:id/guests", h.Guest.ListGuests)
			eventRoutes.PUT("/:id/guests/:guestID", h.Guest.UpdateGuest)
			eventRoutes.DELETE("/:id/guests/:guestID", h.Guest.DeleteGuest)
			eventRoutes.POST("/:id/guests/:guestID/confirm", h.Guest.ConfirmGuest)
			eventRoutes.POST("/:id/guests/:guestID/checkin", h.Guest.CheckInGuest)
			eventRoutes.GET("/:id/guests/:guestID/link", h.Guest.ConfirmationLink)

			eventRoutes.GET("/:id/quota", h.Guest.Quota)
			eventRoutes.GET("/:id/stats", h.Guest.Stats)

			eventRoutes.POST("/:id/promoters", h.Promoter.AddPromoter)
			eventRoutes.GET("/:id/promoters", h.Promoter.ListPromoters)
			eventRoutes.PUT("/:id/promoters/:promoterID", h.Promoter.UpdatePromoter)
			eventRoutes.DELETE("/:id/promoters/:promoterID", h.Promoter.DeletePromoter)
			eventRoutes.GET("/:id/promoters/:promoterID/stats", h.Guest.PromoterStats)

			eventRoutes.GET("/:id/export", h.Reports.ExportGuestList)
		}

		notificationRoutes := protected.Group("/notifications")
		{
			notificationRoutes.GET("", h.Notification.ListMine)
			notificationRoutes.PUT("/:id/read", h.Notification.MarkRead)
			notificationRoutes.POST("/devices", h.Notification.RegisterDevice)
			notificationRoutes.DELETE("/devices/:token", h.Notification.RemoveDevice)
		}

		auditRoutes := protected.Group("/auditlogs")
		{
			auditRoutes.GET("", func(c *gin.Context) {
				filter := auditlog.AuditLogFilter{
					Action: c.Query("action"),
					Status: c.Query("status"),
				}
				if v := c.Query("event_id"); v != "" {
					filter.EventID = &v
				}
				if v := c.Query("user_id"); v != "" {
					filter.UserID = &v
				}
				logs, err := h.AuditSvc.GetAuditLogs(c.Request.Context(), filter)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				c.JSON(http.StatusOK, logs)
			})
		}
	}
}
