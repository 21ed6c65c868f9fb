package handlers

import (
	"time"

	"hatirlat/internal/auth"
	"hatirlat/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the router-level settings
type RouterConfig struct {
	CORSOrigins    []string
	TrustedProxies []string
}

// NewRouter wires every endpoint. limiter may be nil to disable the free tier limit.
func NewRouter(h *Handler, limiter *auth.FreeLimiter, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger())

	if len(cfg.TrustedProxies) == 0 {
		cfg.TrustedProxies = []string{"127.0.0.1"}
	}
	router.SetTrustedProxies(cfg.TrustedProxies)

	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// Basic routes
	router.GET("/", HomeHandler)
	router.GET("/health", HealthHandler)

	// Token and registration routes (no auth required)
	router.POST("/token", h.Token)
	router.POST("/token/refresh", h.RefreshToken)
	router.POST("/accounts", h.CreateAccount)

	// Invite routes (no auth required)
	router.GET("/groups/join/:code", h.PreviewInvite)
	router.POST("/groups/join/:code", h.JoinGroup)

	protected := router.Group("")
	protected.Use(auth.AuthMiddleware(h.tokens))
	{
		create := []gin.HandlerFunc{h.CreateReminder}
		if limiter != nil {
			create = append([]gin.HandlerFunc{limiter.Middleware()}, create...)
		}

		protected.GET("/reminders", h.ListReminders)
		protected.POST("/reminders", create...)
		protected.GET("/reminders/stats", h.ReminderStats)
		protected.GET("/reminders/:id", h.GetReminder)
		protected.PUT("/reminders/:id", h.UpdateReminder)
		protected.DELETE("/reminders/:id", h.DeleteReminder)
		protected.PATCH("/reminders/:id/toggle", h.ToggleReminder)
		protected.PUT("/reminders/:id/status", h.UpdateReminderStatus)
		protected.GET("/reminders/:id/deliveries", h.ListDeliveries)

		protected.GET("/groups", h.ListGroups)
		protected.POST("/groups", h.CreateGroup)
		protected.GET("/groups/:id", h.GetGroup)
		protected.PUT("/groups/:id", h.UpdateGroup)
		protected.DELETE("/groups/:id", h.DeleteGroup)

		protected.GET("/groups/:id/members", h.ListMembers)
		protected.POST("/groups/:id/members", h.AddMember)
		protected.PUT("/groups/:id/members/:memberId", h.UpdateMember)
		protected.DELETE("/groups/:id/members/:memberId", h.RemoveMember)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
