package app

import (
	"net/http"
	"time"

	"leave-portal/internal/auth"
	"leave-portal/internal/leave"
	"leave-portal/internal/leavetype"
	"leave-portal/internal/middleware"
	"leave-portal/internal/rbac"
	"leave-portal/internal/session"
	"leave-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const idempotencyTTL = 10 * time.Minute

// NewRouter builds the portal's gin engine on top of a.
func NewRouter(a *App) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.ContextLogger(a.Logger),
		middleware.RateLimitByIP(rate.Limit(a.Config.PortalRateLimit), a.Config.PortalRateBurst),
		middleware.RecordActivity(a.Guard, session.StatusRoute, "GET /healthz", "GET /metrics"),
	)

	router.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "session": a.Guard.Status().State}, nil)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.Guard.Subscribe(func(e session.Event) {
		a.Logger.Info("session event",
			zap.String("type", string(e.Type)),
			zap.Duration("remaining", e.Remaining),
			zap.String("reason", e.Reason),
		)
	})

	registerModules(router, a)
	return router
}

func registerModules(router *gin.Engine, a *App) {
	// --- Handlers ---
	authHandler := auth.NewHandler(a.Auth, a.Guard, a.Logger)
	sessionHandler := session.NewHandler(a.Guard, a.Logger)
	leaveHandler := leave.NewHandler(a.Leaves, a.Logger)
	leaveTypeHandler := leavetype.NewHandler(a.LeaveTypes, a.Logger)
	rbacHandler := rbac.NewHandler(a.RBAC, a.Logger)

	var onCreate []gin.HandlerFunc
	if a.Redis != nil {
		onCreate = append(onCreate, middleware.Idempotency(a.Redis, idempotencyTTL))
	}

	// --- Routes Registration ---
	api := router.Group("/api")
	{
		auth.RegisterRoutes(api, authHandler)
		session.RegisterRoutes(api, sessionHandler)
		leave.RegisterRoutes(api, leaveHandler, a.Guard, onCreate...)
		leavetype.RegisterRoutes(api, leaveTypeHandler, a.Guard, a.RBAC)
		rbac.RegisterRoutes(api.Group("", middleware.RequireSession(a.Guard)), rbacHandler)
	}
}
