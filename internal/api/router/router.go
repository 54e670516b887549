package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"barberbook/backend/config"
	"barberbook/backend/internal/api/handler"
	"barberbook/backend/internal/api/middleware"
	"barberbook/backend/internal/model"
	"barberbook/backend/pkg/jwt"
	"barberbook/backend/pkg/redis"
)

// clockRateLimit caps clock attempts per client IP per minute.
const (
	clockRateLimit  = 30
	clockRateWindow = time.Minute
)

// Setup builds the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── health check ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// authentication (no token required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// authenticated routes
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// clock module
			schedules := authorized.Group("/staff-schedules")
			{
				schedules.POST("/clock", middleware.RateLimit(rdb, clockRateLimit, clockRateWindow), h.Clock.Clock)
				schedules.GET("/records", h.Clock.Records)
				schedules.GET("/summary", h.Clock.Summary)
			}

			// staff administration
			staff := authorized.Group("/staff")
			staff.Use(middleware.RoleAuth(model.RoleAdmin, model.RoleOwner))
			{
				staff.POST("", h.Staff.Create)
				staff.GET("", h.Staff.List)
				staff.GET("/:id", h.Staff.Get)
				staff.PUT("/:id", h.Staff.Update)
				staff.DELETE("/:id", h.Staff.Deactivate)
			}

			// shift rules
			rules := authorized.Group("/shift-rules")
			{
				rules.GET("", h.ShiftRule.Get)
				rules.PUT("", middleware.RoleAuth(model.RoleAdmin, model.RoleOwner), h.ShiftRule.Update)
			}

			// export
			export := authorized.Group("/export")
			{
				export.GET("/timesheet", middleware.RoleAuth(model.RoleAdmin, model.RoleOwner), h.Export.Timesheet)
			}
		}
	}

	return r
}
