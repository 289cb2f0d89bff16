package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leave-portal/internal/shared/audit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StartHTTPServer menjalankan portal sampai SIGINT/SIGTERM lalu shutdown
// secara graceful. onShutdown dipanggil sebelum listener ditutup.
func StartHTTPServer(
	router *gin.Engine,
	cfg ServerConfig,
	auditLogger audit.Logger,
	onShutdown func(),
) {
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		zap.L().Info("portal listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	zap.L().Info("shutdown signal received", zap.String("signal", sig.String()))

	// --- Audit log sebelum shutdown ---
	auditLogger.Log(context.Background(), audit.Entry{
		Action:  audit.ActionServerShutdown,
		Message: "portal is shutting down",
		Meta: map[string]any{
			"signal": sig.String(),
		},
	})
	// hentikan idle timer & tutup redis
	if onShutdown != nil {
		onShutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zap.L().Error("forced shutdown", zap.Error(err))
	} else {
		zap.L().Info("portal exited gracefully")
	}
}
