package main

import (
	"context"
	"time"

	"leave-portal/internal/app"
	"leave-portal/internal/bootstrap"
	"leave-portal/internal/config"
	"leave-portal/internal/shared/apperror"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := bootstrap.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	a, err := app.BuildApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	bootstrap.StartHTTPServer(
		app.NewRouter(a),
		bootstrap.ServerConfig{
			Port:         cfg.PortalPort,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		a.Audit,
		a.Close,
	)
}
