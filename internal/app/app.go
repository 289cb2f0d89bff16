package app

import (
	"context"
	"fmt"
	"time"

	"leave-portal/internal/apiclient"
	"leave-portal/internal/auth"
	"leave-portal/internal/config"
	"leave-portal/internal/leave"
	"leave-portal/internal/leavetype"
	"leave-portal/internal/rbac"
	"leave-portal/internal/session"
	"leave-portal/internal/shared/audit"
	"leave-portal/internal/shared/connection"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the wired client stack. The portal and the CLI both build one.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Audit      audit.Logger
	Redis      *redis.Client
	Store      session.Store
	Guard      *session.Guard
	RBAC       rbac.Service
	Auth       auth.Service
	LeaveTypes leavetype.Service
	Leaves     *leave.Controller
}

func BuildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		Audit:  audit.NewStdoutLogger(logger),
	}

	// 1. Session slot
	switch cfg.SessionStore {
	case config.StoreRedis:
		rdb, err := connection.ConnectRedisWithRetry(ctx, cfg.RedisAddr, 5, 2*time.Second, logger)
		if err != nil {
			return nil, err
		}
		a.Redis = rdb
		a.Store = session.NewRedisStore(rdb, cfg.RedisSessionKey)
	case config.StoreMemory:
		a.Store = session.NewMemoryStore()
	default:
		a.Store = session.NewFileStore(cfg.SessionFile)
	}

	// 2. Login goes out without a token and a 401 there is bad credentials,
	// not a dead session.
	authClient := apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout, apiclient.WithLogger(logger))
	a.Auth = auth.NewService(authClient, logger)

	a.Guard = session.NewGuard(a.Store,
		session.WithAuthenticator(a.Auth),
		session.WithIdleTimeout(cfg.IdleTimeout),
		session.WithWarningWindow(cfg.WarningWindow),
		session.WithAuditLogger(a.Audit),
		session.WithLogger(logger),
	)

	// 3. Everything else carries the stored token and ends the session on 401.
	client := apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout,
		apiclient.WithLogger(logger),
		apiclient.WithTokenSource(session.StoreTokenSource{Store: a.Store}),
		apiclient.WithUnauthorizedHandler(func(ctx context.Context) {
			a.Guard.ForceLogout(ctx, "the server rejected the session token")
		}),
	)

	rbacService, err := rbac.NewDefaultService(logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build role policy: %w", err)
	}
	a.RBAC = rbacService

	var cache redis.Cmdable
	if a.Redis != nil {
		cache = a.Redis
	}
	a.LeaveTypes = leavetype.NewService(leavetype.NewGateway(client), a.Guard, a.RBAC, cache, logger)
	a.Leaves = leave.NewController(leave.NewGateway(client), a.Guard, a.RBAC,
		leave.WithTypeResolver(a.LeaveTypes),
		leave.WithLogger(logger),
	)

	state := a.Guard.Initialize(ctx)
	logger.Info("session restored", zap.String("state", string(state)))

	return a, nil
}

// Close stops the idle timer and releases redis.
func (a *App) Close() {
	if a.Guard != nil {
		a.Guard.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("close redis failed", zap.Error(err))
		}
	}
}
